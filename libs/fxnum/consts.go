package fxnum

// Constants of the fdlibm e_log and e_exp reductions, scaled by 10^18.
// ln2 is split into hi and lo parts. Each part is kept as a numerator
// over its own scale so that k*ln2 keeps digits below 10^-18.
var (
	ln2Hi      = FromLimbs(13974485815783726801, 3, 0)
	ln2HiScale = FromLimbs(7766279631452241920, 5, 0)
	ln2Lo      = FromLimbs(3405790746697269248, 1034445385942222, 0)
	ln2LoScale = FromLimbs(80237960548581376, 10841254275107988496, 293873)

	sqrt2OverTwo = FromRaw64(707106781186547600)

	// log polynomial, Lg1..Lg7
	lg1 = FromRaw64(666666666666673513)
	lg2 = FromRaw64(399999999994094190)
	lg3 = FromRaw64(285714287436623914)
	lg4 = FromRaw64(222221984321497839)
	lg5 = FromRaw64(181835721616180501)
	lg6 = FromRaw64(153138376992093733)
	lg7 = FromRaw64(147981986051165859)

	// exp polynomial, P1..P5
	p1 = SignedFxNum{Value: FromRaw64(166666666666666019)}
	p2 = SignedFxNum{Value: FromRaw64(2777777777701559), Negative: true}
	p3 = SignedFxNum{Value: FromRaw64(66137563214379)}
	p4 = SignedFxNum{Value: FromRaw64(1653390220546), Negative: true}
	p5 = SignedFxNum{Value: FromRaw64(41381367970)}

	halfLn2      = FromRaw64(346573590279972640)
	threeHalfLn2 = FromRaw64(1039720770839917900)
	invLn2       = FromRaw64(1442695040888963387)
)
