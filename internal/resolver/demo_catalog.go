package resolver

// DemoItem is one entry of the built-in demo catalog: common Indian
// kirana SKUs keyed by EAN barcode. Shops start from this list so the
// first "Maggi 5 add karo" works without any setup.
type DemoItem struct {
	Barcode      string
	Name         string
	Brand        string
	Unit         string
	SellingPrice float64
	CostPrice    float64
}

// DemoCatalog is the seed inventory. Order matters: catalog listings
// preserve insertion order and ties in fuzzy matching keep the earlier
// entry.
var DemoCatalog = []DemoItem{
	{Barcode: "8901000000001", Name: "Maggi Noodles", Brand: "Nestle", Unit: "packet", SellingPrice: 14, CostPrice: 11.5},
	{Barcode: "8901000000002", Name: "Parle-G Biscuit", Brand: "Parle", Unit: "packet", SellingPrice: 10, CostPrice: 8},
	{Barcode: "8901000000003", Name: "Tata Salt", Brand: "Tata", Unit: "kg", SellingPrice: 28, CostPrice: 24},
	{Barcode: "8901000000004", Name: "Aashirvaad Atta", Brand: "ITC", Unit: "kg", SellingPrice: 55, CostPrice: 48},
	{Barcode: "8901000000005", Name: "Amul Butter", Brand: "Amul", Unit: "packet", SellingPrice: 56, CostPrice: 50},
	{Barcode: "8901000000006", Name: "Fortune Sunflower Tel", Brand: "Fortune", Unit: "litre", SellingPrice: 145, CostPrice: 132},
	{Barcode: "8901000000007", Name: "Toor Dal", Brand: "", Unit: "kg", SellingPrice: 160, CostPrice: 140},
	{Barcode: "8901000000008", Name: "Basmati Chawal", Brand: "India Gate", Unit: "kg", SellingPrice: 120, CostPrice: 102},
	{Barcode: "8901000000009", Name: "Cheeni", Brand: "", Unit: "kg", SellingPrice: 44, CostPrice: 40},
	{Barcode: "8901000000010", Name: "Amul Doodh", Brand: "Amul", Unit: "litre", SellingPrice: 66, CostPrice: 60},
	{Barcode: "8901000000011", Name: "Lifebuoy Sabun", Brand: "HUL", Unit: "piece", SellingPrice: 36, CostPrice: 30},
	{Barcode: "8901000000012", Name: "Colgate Toothpaste", Brand: "Colgate", Unit: "piece", SellingPrice: 95, CostPrice: 82},
	{Barcode: "8901000000013", Name: "Red Label Chai", Brand: "Brooke Bond", Unit: "packet", SellingPrice: 145, CostPrice: 128},
	{Barcode: "8901000000014", Name: "Ghee", Brand: "Amul", Unit: "litre", SellingPrice: 620, CostPrice: 565},
	{Barcode: "8901000000015", Name: "Surf Excel", Brand: "HUL", Unit: "kg", SellingPrice: 125, CostPrice: 110},
}

// LookupDemo returns the demo item for a barcode, or nil.
func LookupDemo(barcode string) *DemoItem {
	for i := range DemoCatalog {
		if DemoCatalog[i].Barcode == barcode {
			return &DemoCatalog[i]
		}
	}
	return nil
}
