package ledger

var (
	KeyPrefixCurrency = []byte{0x00}
	KeyPrefixPool     = []byte{0x10}
)

func LedgerKeyCurrency(symbol string) LedgerKey {
	key := make([]byte, len(KeyPrefixCurrency)+len(symbol))
	copy(key, KeyPrefixCurrency)
	copy(key[len(KeyPrefixCurrency):], symbol)
	return key
}

func LedgerKeyPool(symbol string) LedgerKey {
	key := make([]byte, len(KeyPrefixPool)+len(symbol))
	copy(key, KeyPrefixPool)
	copy(key[len(KeyPrefixPool):], symbol)
	return key
}

