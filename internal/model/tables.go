package model

// Tables lists every persisted model in dependency order for AutoMigrate.
func Tables() []interface{} {
	return []interface{}{
		&Account{},
		&Journal{},
		&PaymentMethodLine{},
		&Partner{},
		&Product{},
		&PricelistItem{},
		&Location{},
		&StockQuant{},
		&Station{},
		&Tank{},
		&Gun{},
		&ShiftType{},
		&Employee{},
		&EmployeeVariance{},
		&Shift{},
		&ShiftHistory{},
		&ShiftDocument{},
		&GunSaleLine{},
		&DrySaleLine{},
		&OtherSaleLine{},
		&CreditSaleLine{},
		&DirectSaleLine{},
		&CollectionLine{},
		&ExpenseLine{},
		&PettyCashLine{},
		&PaymentLine{},
		&TransferLine{},
		&SummaryLine{},
		&TankStockTake{},
		&SaleOrder{},
		&SaleOrderLine{},
		&Picking{},
		&StockMove{},
		&Move{},
		&MoveLine{},
		&Payment{},
	}
}
