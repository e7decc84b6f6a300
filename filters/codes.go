package filters

// Code tables translating the site's numeric URL category codes into the
// labels we store verbatim from the detail pages.

var bodyTypeCodes = map[int]string{
	277:  "Limuzina",
	278:  "Karavan",
	2631: "Hečbek",
	2632: "Džip/SUV",
	2633: "Kupe",
	2634: "Kabriolet/Roadster",
	2635: "Pickup",
	2636: "Monovolumen (MiniVan)",
}

var gearboxCodes = map[int]string{
	3210:  "Manuelni 4 brzine",
	3211:  "Manuelni 5 brzina",
	3212:  "Manuelni 6 brzina",
	10795: "Automatski / poluautomatski",
}

var wheelSideCodes = map[int]string{
	2630: "Levi volan",
	2289: "Desni volan",
}

var fuelTypeCodes = map[int]string{
	45:    "Benzin",
	2308:  "Hibridni pogon",
	2309:  "Dizel",
	2310:  "Benzin + Gas (TNG)",
	2312:  "Električni pogon",
	10525: "Benzin + Metan (CNG)",
}

var doorCodes = map[int]string{
	3012: "2/3 vrata",
	3013: "4/5 vrata",
}

var driveCodes = map[int]string{
	293: "Prednji",
	294: "Zadnji",
	295: "4x4",
	296: "4x4 reduktor",
}

var seatCodes = map[int]string{
	3193: "2 sedišta",
	3702: "3 sedišta",
	3194: "4 sedišta",
	3195: "5 sedišta",
	3196: "6 sedišta",
	3197: "7 sedišta",
	3198: "8 sedišta",
	3199: "9 sedišta",
}

var acTypeCodes = map[int]string{
	3159: "Manuelna klima",
	3160: "Automatska klima",
}

var damageCodes = map[int]string{
	3799: "Nije oštećen",
}

var emissionClassCodes = map[int]string{
	4803: "Euro 6",
}

var interiorMaterialCodes = map[int]string{
	3831: "Prirodna koža",
	3832: "Kombinovana koža",
	3833: "Velur",
}
