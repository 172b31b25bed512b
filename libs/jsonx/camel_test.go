package jsonx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Underscore(t *testing.T) {
	require.Equal(t, "testUnderscore", toLowerFirstCamel("_test_underscore"))
	require.Equal(t, "vaultA", toLowerFirstCamel("vault_a"))
	require.Equal(t, "maxSupply", toLowerFirstCamel("MaxSupply"))
	require.Equal(t, "", toLowerFirstCamel(""))
}

func TestCamelCaseNames(t *testing.T) {
	type view struct {
		VaultA    uint16 `json:"vault_a"`
		BuyFeeBps uint16 `json:"buy_fee_bps,omitempty"`
		Symbol    string `json:"symbol"`
		Hidden    string `json:"-"`
		MaxSupply uint16
	}

	bz, err := Marshal(view{VaultA: 1, BuyFeeBps: 2, Symbol: "A", Hidden: "x", MaxSupply: 3})
	require.NoError(t, err)
	require.Equal(t, `{"vaultA":1,"buyFeeBps":2,"symbol":"A","maxSupply":3}`, string(bz))

	var v view
	require.NoError(t, Unmarshal([]byte(`{"vault_a":4,"buyFeeBps":5,"MaxSupply":6}`), &v))
	require.Equal(t, view{VaultA: 4, BuyFeeBps: 5, MaxSupply: 6}, v)
}
