package models

// CommandAction identifies the action extracted from a user message.
type CommandAction string

const (
	ActionAddStock             CommandAction = "add_stock"
	ActionReduceStock          CommandAction = "reduce_stock"
	ActionCheckStock           CommandAction = "check_stock"
	ActionTotalSales           CommandAction = "total_sales"
	ActionTodayProfit          CommandAction = "today_profit"
	ActionWeeklyProfit         CommandAction = "weekly_profit"
	ActionMonthlyProfit        CommandAction = "monthly_profit"
	ActionYearlyProfit         CommandAction = "yearly_profit"
	ActionListProducts         CommandAction = "list_products"
	ActionLowStock             CommandAction = "low_stock"
	ActionAdjustStock          CommandAction = "adjust_stock"
	ActionUpdatePrice          CommandAction = "update_price"
	ActionSetLowStockThreshold CommandAction = "set_low_stock_threshold"
	ActionTopProductToday      CommandAction = "top_product_today"
	ActionZeroSaleToday        CommandAction = "zero_sale_today"
	ActionExpiryProducts       CommandAction = "expiry_products"
	ActionPurchaseSuggestion   CommandAction = "purchase_suggestion"
	ActionPredictiveAlert      CommandAction = "predictive_alert"
	ActionSeasonalSuggestion   CommandAction = "seasonal_suggestion"
	ActionUndoLast             CommandAction = "undo_last"
	ActionHelp                 CommandAction = "help"
	ActionAddUdhar             CommandAction = "add_udhar"
	ActionPayUdhar             CommandAction = "pay_udhar"
	ActionListUdhar            CommandAction = "list_udhar"
	ActionCustomerUdhar        CommandAction = "customer_udhar"
	ActionReportSummary        CommandAction = "report_summary"
	ActionUnknown              CommandAction = "unknown"
)

// ParseCommandAction maps an action string (e.g. from the LLM JSON
// response) to a CommandAction, defaulting to unknown.
func ParseCommandAction(s string) CommandAction {
	switch CommandAction(s) {
	case ActionAddStock, ActionReduceStock, ActionCheckStock, ActionTotalSales,
		ActionTodayProfit, ActionWeeklyProfit, ActionMonthlyProfit, ActionYearlyProfit,
		ActionListProducts, ActionLowStock, ActionAdjustStock, ActionUpdatePrice,
		ActionSetLowStockThreshold, ActionTopProductToday, ActionZeroSaleToday,
		ActionExpiryProducts, ActionPurchaseSuggestion, ActionPredictiveAlert,
		ActionSeasonalSuggestion, ActionUndoLast, ActionHelp, ActionAddUdhar,
		ActionPayUdhar, ActionListUdhar, ActionCustomerUdhar, ActionReportSummary:
		return CommandAction(s)
	default:
		return ActionUnknown
	}
}

// Command is the structured command produced by the classifier.
//
// ProductName doubles as the customer name for udhar commands and as the
// festival keyword for seasonal suggestions. Quantity doubles as the udhar
// amount (rupees), the corrected quantity for adjust_stock, the new selling
// price for update_price and the threshold for set_low_stock_threshold.
type Command struct {
	Action      CommandAction `json:"action"`
	ProductName string        `json:"product_name,omitempty"`
	Quantity    float64       `json:"quantity,omitempty"`
	Confidence  float64       `json:"confidence"`
	RawMessage  string        `json:"raw_message"`
}

// IsValid reports whether the command carries the fields its action needs.
// Invalid commands are rejected before execution and the user gets a
// clarifying message instead.
func (c Command) IsValid() bool {
	switch c.Action {
	case ActionCheckStock, ActionCustomerUdhar, ActionSeasonalSuggestion:
		return c.ProductName != ""
	case ActionAddStock, ActionReduceStock, ActionAdjustStock, ActionUpdatePrice,
		ActionSetLowStockThreshold, ActionAddUdhar, ActionPayUdhar:
		return c.ProductName != "" && c.Quantity > 0
	case ActionTotalSales, ActionTodayProfit, ActionWeeklyProfit, ActionMonthlyProfit,
		ActionYearlyProfit, ActionListProducts, ActionLowStock, ActionTopProductToday,
		ActionZeroSaleToday, ActionExpiryProducts, ActionPurchaseSuggestion,
		ActionPredictiveAlert, ActionUndoLast, ActionHelp, ActionListUdhar,
		ActionReportSummary:
		return true
	}
	return false
}
