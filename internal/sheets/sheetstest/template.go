package sheetstest

// SeedTemplate fills spreadsheetID with a small Dropdown sheet:
//
//	Transport types: Bus, MRT, Taxi
//	Others categories: Transport, Food (Breakfast, Lunch), Shopping
//	Payments: Card (Visa, Master), Cash
func (m *Memory) SeedTemplate(spreadsheetID string) {
	m.Set(spreadsheetID, "Dropdown!A2", []string{"Transport", "Food", "Shopping"})
	m.Set(spreadsheetID, "Dropdown!A3", []string{"Bus", "Breakfast"}, []string{"MRT", "Lunch"}, []string{"Taxi"})
	m.Set(spreadsheetID, "Dropdown!A12", []string{"Card", "Cash"})
	m.Set(spreadsheetID, "Dropdown!A13", []string{"Visa"}, []string{"Master"})
}
