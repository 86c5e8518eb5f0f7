package seed

// Catálogo de demostración de la tienda (tuberías, fijaciones, aislamiento, herramientas).

type categoryRow struct{ id, fr, nl string }

var categories = []categoryRow{
	{"cat-pipes", "Tuyaux", "Buizen"},
	{"cat-fasteners", "Fixations", "Bevestigingen"},
	{"cat-insulation", "Isolation", "Isolatie"},
	{"cat-tools", "Outils", "Gereedschap"},
}

type productRow struct {
	id, sku, name, category, unit, price string
	stock                                int
}

var products = []productRow{
	{"p001", "GG10WP035020", "Tuyau PVC 35mm", "cat-pipes", "meter", "4.50", 250},
	{"p002", "GG10WP050020", "Tuyau PVC 50mm", "cat-pipes", "meter", "6.80", 180},
	{"p003", "GG10WP075020", "Tuyau PVC 75mm", "cat-pipes", "meter", "9.20", 120},
	{"p004", "GG10WP100020", "Tuyau PVC 100mm", "cat-pipes", "meter", "12.50", 90},
	{"p005", "GG20CU015010", "Tube Cuivre 15mm", "cat-pipes", "meter", "8.90", 200},
	{"p006", "GG20CU022010", "Tube Cuivre 22mm", "cat-pipes", "meter", "12.30", 150},
	{"p007", "GG30PE032025", "Tuyau PE 32mm", "cat-pipes", "meter", "3.20", 500},
	{"p008", "GG30PE050025", "Tuyau PE 50mm", "cat-pipes", "meter", "5.40", 350},
	{"p009", "GG40MU020015", "Multicouche 20mm", "cat-pipes", "meter", "4.80", 400},
	{"p010", "GG40MU026015", "Multicouche 26mm", "cat-pipes", "meter", "6.50", 300},
	{"p011", "GG50DR110020", "Drain 110mm", "cat-pipes", "piece", "18.90", 80},
	{"p012", "GG50DR160020", "Drain 160mm", "cat-pipes", "piece", "28.50", 50},
	{"p013", "FX10VS004025", "Vis 4x25mm (100pc)", "cat-fasteners", "box", "6.90", 500},
	{"p014", "FX10VS005040", "Vis 5x40mm (100pc)", "cat-fasteners", "box", "8.50", 400},
	{"p015", "FX10VS006060", "Vis 6x60mm (100pc)", "cat-fasteners", "box", "12.30", 350},
	{"p016", "FX20BL006050", "Boulon M6x50 (50pc)", "cat-fasteners", "box", "14.80", 200},
	{"p017", "FX20BL008070", "Boulon M8x70 (50pc)", "cat-fasteners", "box", "18.50", 180},
	{"p018", "FX30CH006010", "Cheville 6mm (100pc)", "cat-fasteners", "box", "5.90", 600},
	{"p019", "FX30CH008010", "Cheville 8mm (100pc)", "cat-fasteners", "box", "7.20", 550},
	{"p020", "FX30CH010010", "Cheville 10mm (50pc)", "cat-fasteners", "box", "8.90", 400},
	{"p021", "FX40CL025001", "Clou 25mm (1kg)", "cat-fasteners", "box", "9.80", 300},
	{"p022", "FX40CL040001", "Clou 40mm (1kg)", "cat-fasteners", "box", "10.50", 280},
	{"p023", "FX50TQ010002", "Tire-fond 10x80 (25pc)", "cat-fasteners", "box", "16.90", 150},
	{"p024", "FX60EC006001", "Écrou M6 (100pc)", "cat-fasteners", "box", "4.50", 700},
	{"p025", "FX70RD006001", "Rondelle M6 (100pc)", "cat-fasteners", "box", "3.20", 800},
	{"p026", "IS10LV050060", "Laine Verre 50mm", "cat-insulation", "m2", "8.90", 450},
	{"p027", "IS10LV080060", "Laine Verre 80mm", "cat-insulation", "m2", "12.50", 380},
	{"p028", "IS10LV100060", "Laine Verre 100mm", "cat-insulation", "m2", "15.80", 320},
	{"p029", "IS20LR050040", "Laine Roche 50mm", "cat-insulation", "m2", "11.20", 400},
	{"p030", "IS20LR080040", "Laine Roche 80mm", "cat-insulation", "m2", "16.50", 350},
	{"p031", "IS30PS020120", "Polystyrène 20mm", "cat-insulation", "m2", "3.80", 600},
	{"p032", "IS30PS040120", "Polystyrène 40mm", "cat-insulation", "m2", "6.20", 500},
	{"p033", "IS30PS060120", "Polystyrène 60mm", "cat-insulation", "m2", "8.90", 420},
	{"p034", "IS40PU030060", "Polyuréthane 30mm", "cat-insulation", "m2", "18.50", 280},
	{"p035", "IS40PU050060", "Polyuréthane 50mm", "cat-insulation", "m2", "24.80", 220},
	{"p036", "IS50FB009010", "Film Pare-vapeur", "cat-insulation", "m2", "1.80", 1000},
	{"p037", "IS60SC050050", "Scotch Alu 50m", "cat-insulation", "piece", "12.90", 300},
	{"p038", "IS70MO010025", "Mousse Expansive 750ml", "cat-insulation", "piece", "8.50", 400},
	{"p039", "TL10MT005001", "Mètre 5m", "cat-tools", "piece", "9.90", 200},
	{"p040", "TL10MT008001", "Mètre 8m", "cat-tools", "piece", "14.50", 150},
	{"p041", "TL20NV045001", "Niveau 45cm", "cat-tools", "piece", "18.90", 100},
	{"p042", "TL20NV080001", "Niveau 80cm", "cat-tools", "piece", "28.50", 80},
	{"p043", "TL30MR500001", "Marteau 500g", "cat-tools", "piece", "22.90", 120},
	{"p044", "TL40SC180001", "Scie Égoïne 18\"", "cat-tools", "piece", "24.90", 90},
	{"p045", "TL50CT180001", "Cutter Pro 18mm", "cat-tools", "piece", "8.90", 250},
	{"p046", "TL60PC200001", "Pince Coupante 200mm", "cat-tools", "piece", "19.90", 110},
	{"p047", "TL70TV006010", "Jeu Tournevis 6pc", "cat-tools", "piece", "24.50", 130},
	{"p048", "TL80CL008013", "Jeu Clés 8-13mm", "cat-tools", "piece", "32.90", 70},
	{"p049", "TL90TR030001", "Truelle 30cm", "cat-tools", "piece", "16.90", 140},
	{"p050", "TL95GL001001", "Gants Travail XL", "cat-tools", "piece", "6.90", 500},
}

type customerRow struct {
	id, kind, name, vat, phone, email, creditLimit string
}

var customers = []customerRow{
	{"c001", "individual", "Jean Dupont", "", "+32 475 12 34 56", "jean.dupont@email.be", "500"},
	{"c002", "individual", "Marie Janssen", "", "+32 476 23 45 67", "marie.janssen@email.be", "300"},
	{"c003", "individual", "Pierre Van den Berg", "", "+32 477 34 56 78", "pierre.vdb@email.be", "750"},
	{"c004", "individual", "Sophie De Smet", "", "+32 478 45 67 89", "sophie.desmet@email.be", "400"},
	{"c005", "individual", "Luc Peeters", "", "+32 479 56 78 90", "luc.peeters@email.be", "600"},
	{"c006", "company", "Batiplus SPRL", "BE0123456749", "+32 2 345 67 89", "contact@batiplus.be", "5000"},
	{"c007", "company", "Construct Pro SA", "BE0234567873", "+32 2 456 78 90", "info@constructpro.be", "10000"},
	{"c008", "company", "Renov'Expert BVBA", "BE0345678997", "+32 2 567 89 01", "contact@renovexpert.be", "7500"},
	{"c009", "company", "Maison & Co NV", "BE0456789034", "+32 2 678 90 12", "info@maisonco.be", "15000"},
	{"c010", "company", "Plomberie Express", "BE0567890161", "+32 2 789 01 23", "contact@plomberieexpress.be", "8000"},
}
