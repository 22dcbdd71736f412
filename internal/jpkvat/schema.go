package jpkvat

// Schema is the mapping table between the document model and the element
// names of one published JPK_VAT schema version. When the Ministry publishes
// a new version, add a new table instead of editing the builder.
type Schema struct {
	// Name identifies the table in logs and error messages.
	Name string

	// Prefix is the namespace prefix of every element.
	Prefix string

	// Namespace is the target namespace URI bound to Prefix.
	Namespace string

	// ExtraNamespaces are declared on the root element as xmlns:<key>.
	ExtraNamespaces map[string]string

	Root string

	Header    HeaderTags
	Subject   SubjectTags
	Sales     RowTags
	SalesCtrl CtrlTags
	Purchases RowTags
	PurchCtrl CtrlTags
}

// HeaderTags names the filing metadata block.
type HeaderTags struct {
	Element string

	FormCode          string
	FormCodeValue     string
	SystemCodeAttr    string
	SystemCodeValue   string
	SchemaVersionAttr string
	SchemaVersion     string

	Variant      string
	VariantValue string

	Purpose    string
	Created    string
	DateFrom   string
	DateTo     string
	SystemName string
}

// SubjectTags names the filing company block.
type SubjectTags struct {
	Element string
	TaxID   string
	Name    string
	Email   string
}

// RowTags names one detail record block.
type RowTags struct {
	Element   string
	Number    string
	TaxID     string
	Name      string
	Address   string
	Document  string
	IssueDate string
	SaleDate  string
	Net       string
	VAT       string
}

// CtrlTags names a control-totals block. An empty Net omits the net sum.
type CtrlTags struct {
	Element string
	Count   string
	Net     string
	VAT     string
}

// JPKVAT3 is the JPK_VAT (3) table, schema version 1-1.
//
// The Ctrl blocks of the published schema carry the row count and the tax
// sum. The net sums (SumaNetto*) are written in addition so the totals can be
// checked against the ledger; blank CtrlTags.Net to drop them.
var JPKVAT3 = Schema{
	Name:      "JPK_VAT (3)",
	Prefix:    "tns",
	Namespace: "http://jpk.mf.gov.pl/wzor/2017/11/13/1113/",
	ExtraNamespaces: map[string]string{
		"etd": "http://crd.gov.pl/xml/schematy/dziedzinowe/mf/2016/01/25/eD/DefinicjeTypy/",
		"xsi": "http://www.w3.org/2001/XMLSchema-instance",
	},
	Root: "JPK",

	Header: HeaderTags{
		Element:           "Naglowek",
		FormCode:          "KodFormularza",
		FormCodeValue:     "JPK_VAT",
		SystemCodeAttr:    "kodSystemowy",
		SystemCodeValue:   "JPK_VAT (3)",
		SchemaVersionAttr: "wersjaSchemy",
		SchemaVersion:     "1-1",
		Variant:           "WariantFormularza",
		VariantValue:      "3",
		Purpose:           "CelZlozenia",
		Created:           "DataWytworzeniaJPK",
		DateFrom:          "DataOd",
		DateTo:            "DataDo",
		SystemName:        "NazwaSystemu",
	},

	Subject: SubjectTags{
		Element: "Podmiot1",
		TaxID:   "NIP",
		Name:    "PelnaNazwa",
		Email:   "Email",
	},

	Sales: RowTags{
		Element:   "SprzedazWiersz",
		Number:    "LpSprzedazy",
		TaxID:     "NrKontrahenta",
		Name:      "NazwaKontrahenta",
		Address:   "AdresKontrahenta",
		Document:  "DowodSprzedazy",
		IssueDate: "DataWystawienia",
		SaleDate:  "DataSprzedazy",
		Net:       "K_19",
		VAT:       "K_20",
	},
	SalesCtrl: CtrlTags{
		Element: "SprzedazCtrl",
		Count:   "LiczbaWierszySprzedazy",
		Net:     "SumaNettoSprzedazy",
		VAT:     "PodatekNalezny",
	},

	Purchases: RowTags{
		Element:   "ZakupWiersz",
		Number:    "LpZakupu",
		TaxID:     "NrDostawcy",
		Name:      "NazwaDostawcy",
		Address:   "AdresDostawcy",
		Document:  "DowodZakupu",
		IssueDate: "DataZakupu",
		SaleDate:  "DataWplywu",
		Net:       "K_45",
		VAT:       "K_46",
	},
	PurchCtrl: CtrlTags{
		Element: "ZakupCtrl",
		Count:   "LiczbaWierszyZakupow",
		Net:     "SumaNettoZakupow",
		VAT:     "PodatekNaliczony",
	},
}
