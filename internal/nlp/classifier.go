package nlp

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kirana-service/internal/models"
)

// CommandParser is the LLM fallback invoked when no heuristic rule fires.
type CommandParser interface {
	ParseCommand(ctx context.Context, message string) (models.Command, error)
}

// Classifier maps a normalized message to a structured command through an
// ordered cascade of heuristic rules. The first matching rule wins — the
// ordering is part of the contract because the keyword sets overlap. Only
// the trailing LLM fallback does I/O.
type Classifier struct {
	rules    []rule
	fallback CommandParser
	logger   *zap.Logger
}

type rule struct {
	name  string
	match func(m *message) *models.Command
}

// message carries both forms of the text through the cascade. Rules match
// on the normalized lowercase form; product-name extraction prefers the
// original so user casing survives into replies.
type message struct {
	norm     string
	original string
	tokens   []string
}

// NewClassifier builds the cascade in priority order.
func NewClassifier(fallback CommandParser, logger *zap.Logger) *Classifier {
	c := &Classifier{fallback: fallback, logger: logger}
	c.rules = []rule{
		{"help", c.matchHelp},
		{"undo", c.matchUndo},
		{"udhar", c.matchUdhar},
		{"total_sales", c.matchTotalSales},
		{"profit", c.matchProfit},
		{"zero_sale_today", c.matchZeroSaleToday},
		{"expiry", c.matchExpiry},
		{"purchase_suggestion", c.matchPurchaseSuggestion},
		{"set_threshold", c.matchSetThreshold},
		{"predictive_alert", c.matchPredictiveAlert},
		{"seasonal", c.matchSeasonal},
		{"update_price", c.matchUpdatePrice},
		{"report_summary", c.matchReportSummary},
		{"single_word_filter", c.matchSingleWordFilter},
		{"product_list", c.matchProductList},
		{"low_stock", c.matchLowStock},
		{"top_product_today", c.matchTopProductToday},
		{"stock_question", c.matchStockQuestion},
		{"barcode_delta", c.matchBarcodeDelta},
		{"quantity_with_verb", c.matchQuantityWithVerb},
		{"bare_barcode", c.matchBareBarcode},
		{"short_product_query", c.matchShortProductQuery},
		{"generic_inventory_word", c.matchGenericInventoryWord},
		{"ambiguous_stock", c.matchAmbiguousStock},
	}
	return c
}

// Classify runs the cascade and falls back to the LLM. It never fails:
// an LLM error degrades to an unknown command with confidence 0. The
// second return reports whether the LLM fallback produced the command.
func (c *Classifier) Classify(ctx context.Context, normalized, original string) (models.Command, bool) {
	m := &message{
		norm:     strings.ToLower(strings.TrimSpace(normalized)),
		original: strings.TrimSpace(original),
	}
	m.tokens = strings.Fields(m.norm)

	for _, r := range c.rules {
		if cmd := r.match(m); cmd != nil {
			cmd.RawMessage = original
			c.logger.Debug("rule matched",
				zap.String("rule", r.name),
				zap.String("action", string(cmd.Action)))
			return *cmd, false
		}
	}

	if c.fallback == nil {
		return models.Command{Action: models.ActionUnknown, RawMessage: original}, false
	}

	cmd, err := c.fallback.ParseCommand(ctx, normalized)
	if err != nil {
		c.logger.Warn("LLM fallback failed", zap.Error(err))
		return models.Command{Action: models.ActionUnknown, RawMessage: original}, true
	}
	cmd.RawMessage = original
	return cmd, true
}

// ===== keyword sets =====

var (
	helpPhrases = []string{"help", "madad", "मदद", "commands", "kya kar sakte ho", "what can you do"}

	undoPhrases = []string{"undo", "wrong", "mistake", "galat ho gaya", "galat entry hata", "वापस लो", "cancel kar do", "pichla wala hatao"}

	udharWords    = []string{"udhar", "udhaar", "baki hai", "baaki hai"}
	questionWords = []string{"kitna", "kitni", "kitne", "how much", "kya hai"}
	payMarkers    = []string{"pay", "paid", "payment", "de diya", "wapas", "vapas", "jama", "chuka", "chukaya"}
	udharListKws  = []string{"udhar list", "list udhar", "sab udhar", "sabka udhar", "all udhar", "udhar summary", "total udhar", "udhaar list"}
	nameJunk      = map[string]bool{
		"ka": true, "ke": true, "ki": true, "ko": true, "ne": true, "se": true,
		"hai": true, "hain": true, "tha": true, "the": true, "h": true,
		"rupaye": true, "rupee": true, "rupees": true, "rs": true, "rupya": true,
		"bhai": true, "ji": true, "wala": true, "wale": true,
		"dikhao": true, "dikha": true, "batao": true, "dekho": true,
		"list": true, "summary": true, "sab": true, "sabka": true,
		"total": true, "check": true, "karo": true, "kar": true, "do": true,
	}

	todayMarkers = []string{"aaj", "aj ", "today"}
	saleKeywords = []string{"total sale", "sale", "sales", "sell", "bika", "becha", "bikri", "business", "kitna maal becha"}
	negMarkers   = []string{"nahi bika", "nahi becha", "nahi hua", "zero sale", "no sale", "नहीं बिका"}

	yearlyMarkers  = []string{"year", "yearly", "saal", "sal ", "annual"}
	monthlyMarkers = []string{"month", "monthly", "mahina", "mahine", "maheena"}
	weeklyMarkers  = []string{"week", "weekly", "hafta", "hafte", "saptah"}

	expiryKws = []string{"expiry", "expire", "expired", "expiring", "exp date"}

	purchaseKws = []string{"kya mangwana", "kya mangana", "purchase suggestion", "kya order karna", "reorder", "kya kharidna", "mangwana chahiye"}

	thresholdKws = []string{"threshold", "minimum stock", "min stock", "kam se kam stock"}

	predictiveKws = []string{"kab khatam", "khatam ho jayega", "stockout", "stock out kab", "predict", "prediction", "stock alert"}

	festivalKws = []string{"diwali", "holi", "rakhi", "rakshabandhan", "eid", "navratri", "dussehra", "christmas", "sankranti", "chhath", "monsoon", "summer", "winter", "sawan", "shaadi season"}

	priceKws = []string{"price", "rate", "daam", "dam ", "bhav", "kimat", "keemat"}

	reportKws = []string{"hisaab", "hisab", "report", "summary", "lekha"}

	productListKws = []string{
		"product list", "products list", "all product", "all products",
		"saare product", "saare products", "saari product list", "pura stock list",
		"full stock list", "all items", "how many products", "kitne product",
		"kitne products", "kitne item",
	}

	lowStockKws = []string{
		"low stock", "kam stock", "stock kam", "low-stock", "low quantity",
		"near out of stock", "khatam hone wala", "khatam hone wale", "कम स्टॉक",
	}

	inventoryWords = []string{"product", "products", "item", "items", "saman", "samaan", "maal"}

	stockQueryMarkers = []string{"kitna", "kitni", "kitne", "check", "batao", "kya", "how much", "bacha"}

	// Words a bare one-word message can never be a category filter for.
	blockedSingleWords = map[string]bool{
		"stock": true, "sale": true, "sales": true, "total": true, "hi": true,
		"hello": true, "hey": true, "ok": true, "okay": true, "yes": true,
		"no": true, "thanks": true, "thank": true, "kitna": true, "kya": true,
		"batao": true, "report": true, "list": true, "namaste": true,
	}

	// Spelling variants for common category filters.
	categoryAliases = map[string]string{
		"daal":  "dal",
		"dhal":  "dal",
		"ata":   "atta",
		"aata":  "atta",
		"chini": "cheeni",
		"oil":   "tel",
	}

	// Blocked keyword set for the 1–3 word check-stock shorthand.
	shortQueryBlocked = []string{
		"total", "sale", "sales", "stock", "kitna", "kitni", "kitne", "udhar",
		"help", "madad", "report", "hisaab", "profit", "munafa", "list",
		"hello", "hi", "namaste", "thanks", "ok",
	}

	addVerbs = []string{
		"add", "daal", "daalo", "dalo", "jodo", "jod", "laya", "laye",
		"aaya", "aaye", "mila", "purchase", "bought", "received", "kharida",
		"rakho", "rakh",
	}
	reduceVerbs = []string{
		"sold", "sell", "becha", "bech", "bik", "bika", "nikala", "nikal",
		"diya", "gaya", "liya", "sale", "kharcha",
	}
)

var (
	digitRe       = regexp.MustCompile(`\d`)
	numberTokenRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	// First <number>[unit] occurrence; grams and millilitres normalize to
	// base kilograms/litres downstream.
	qtyUnitRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|gm|gram|grams|g|ml|ltr|litre|liter|l|piece|pieces|pcs|packet|packets|pkt|bottle|bottles|box|dozen)?\b`)
)

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return digitRe.MatchString(s)
}

// ===== rules, in cascade order =====

func (c *Classifier) matchHelp(m *message) *models.Command {
	if containsAny(m.norm, helpPhrases) || containsAny(m.original, helpPhrases) {
		return &models.Command{Action: models.ActionHelp, Confidence: 1.0}
	}
	return nil
}

func (c *Classifier) matchUndo(m *message) *models.Command {
	if containsAny(m.norm, undoPhrases) || containsAny(m.original, undoPhrases) {
		return &models.Command{Action: models.ActionUndoLast, Confidence: 1.0}
	}
	return nil
}

// matchUdhar is the credit sub-cascade. The graceful-degradation rule at
// the end guarantees that any digit-less udhar mention still gets a reply.
func (c *Classifier) matchUdhar(m *message) *models.Command {
	if !containsAny(m.norm, udharWords) {
		return nil
	}

	// (a) question about a balance, no amount present
	if containsAny(m.norm, questionWords) && !hasDigit(m.norm) {
		if name := extractUdharCustomer(m.tokens); name != "" {
			return &models.Command{Action: models.ActionCustomerUdhar, ProductName: name, Confidence: 0.9}
		}
		return &models.Command{Action: models.ActionListUdhar, Confidence: 0.9}
	}

	// (b) explicit summary request
	if containsAny(m.norm, udharListKws) {
		return &models.Command{Action: models.ActionListUdhar, Confidence: 1.0}
	}

	// (c) message starts with the udhar keyword: "udhar Ramesh 200",
	// "udhar pay Ramesh 200", "udhar Ramesh"
	if len(m.tokens) > 1 && isUdharWord(m.tokens[0]) {
		rest := m.tokens[1:]
		amount, amountIdx := firstNumber(rest)
		if amountIdx >= 0 {
			name := joinName(rest[:amountIdx])
			if name == "" {
				name = joinName(removeNumbers(rest))
			}
			if name != "" && amount > 0 {
				action := models.ActionAddUdhar
				if containsAny(m.norm, payMarkers) {
					action = models.ActionPayUdhar
				}
				return &models.Command{Action: action, ProductName: name, Quantity: amount, Confidence: 0.9}
			}
		} else if !containsAny(m.norm, questionWords) {
			if name := joinName(rest); name != "" {
				return &models.Command{Action: models.ActionCustomerUdhar, ProductName: name, Confidence: 0.8}
			}
		}
	}

	// (d) "<name> udhar" / "<name> ka udhar" with no digits
	if !hasDigit(m.norm) && len(m.tokens) >= 2 && isUdharWord(m.tokens[len(m.tokens)-1]) {
		if name := joinName(m.tokens[:len(m.tokens)-1]); name != "" {
			return &models.Command{Action: models.ActionCustomerUdhar, ProductName: name, Confidence: 0.8}
		}
	}

	// (e) graceful degradation
	if !hasDigit(m.norm) {
		return &models.Command{Action: models.ActionListUdhar, Confidence: 0.6}
	}
	return nil
}

func isUdharWord(tok string) bool {
	return tok == "udhar" || tok == "udhaar"
}

// extractUdharCustomer pulls a customer name out of "<name> ka/ke/ki
// udhar" or "udhar <name>" style questions.
func extractUdharCustomer(tokens []string) string {
	for i, tok := range tokens {
		if !isUdharWord(tok) {
			continue
		}
		// "<name> ka udhar"
		if i >= 2 && (tokens[i-1] == "ka" || tokens[i-1] == "ke" || tokens[i-1] == "ki") {
			if name := cleanNameToken(tokens[i-2]); name != "" {
				return name
			}
		}
		// "udhar <name>"
		if i+1 < len(tokens) {
			if name := cleanNameToken(tokens[i+1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// cleanNameToken rejects junk/question tokens and anything shorter than
// three characters.
func cleanNameToken(tok string) string {
	tok = strings.Trim(tok, ".,?!")
	if len(tok) < 3 || nameJunk[tok] || isUdharWord(tok) {
		return ""
	}
	for _, q := range questionWords {
		if tok == q {
			return ""
		}
	}
	return strings.ToUpper(tok[:1]) + tok[1:]
}

func joinName(tokens []string) string {
	var parts []string
	for _, tok := range tokens {
		if containsAny(tok, payMarkers) && len(parts) == 0 {
			continue // leading payment marker, not part of the name
		}
		if name := cleanNameToken(tok); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}

func firstNumber(tokens []string) (float64, int) {
	for i, tok := range tokens {
		if numberTokenRe.MatchString(tok) {
			v, err := strconv.ParseFloat(tok, 64)
			if err == nil {
				return v, i
			}
		}
	}
	return 0, -1
}

func removeNumbers(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if !numberTokenRe.MatchString(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func (c *Classifier) matchTotalSales(m *message) *models.Command {
	if m.norm == "sale" || m.norm == "sales" || m.norm == "total sale" || m.norm == "total sales" {
		return &models.Command{Action: models.ActionTotalSales, Confidence: 1.0}
	}
	if !containsAny(m.norm, todayMarkers) || !containsAny(m.norm, saleKeywords) {
		return nil
	}
	// Negations belong to the zero-sale rule, superlatives to the
	// top-product rule further down.
	if containsAny(m.norm, negMarkers) || strings.Contains(m.norm, "sabse") {
		return nil
	}
	return &models.Command{Action: models.ActionTotalSales, Confidence: 1.0}
}

func (c *Classifier) matchProfit(m *message) *models.Command {
	if !strings.Contains(m.norm, "profit") && !strings.Contains(m.norm, "munafa") {
		return nil
	}
	switch {
	case containsAny(m.norm, yearlyMarkers):
		return &models.Command{Action: models.ActionYearlyProfit, Confidence: 1.0}
	case containsAny(m.norm, monthlyMarkers):
		return &models.Command{Action: models.ActionMonthlyProfit, Confidence: 1.0}
	case containsAny(m.norm, weeklyMarkers):
		return &models.Command{Action: models.ActionWeeklyProfit, Confidence: 1.0}
	default:
		return &models.Command{Action: models.ActionTodayProfit, Confidence: 1.0}
	}
}

func (c *Classifier) matchZeroSaleToday(m *message) *models.Command {
	if !containsAny(m.norm, todayMarkers) {
		return nil
	}
	hasNeg := containsAny(m.norm, []string{"nahi", "nahin", "नहीं", "zero", "no "})
	hasSaleVerb := containsAny(m.norm, []string{"bika", "becha", "sale", "sell", "hua"})
	if hasNeg && hasSaleVerb {
		return &models.Command{Action: models.ActionZeroSaleToday, Confidence: 1.0}
	}
	return nil
}

func (c *Classifier) matchExpiry(m *message) *models.Command {
	if containsAny(m.norm, expiryKws) {
		return &models.Command{Action: models.ActionExpiryProducts, Confidence: 1.0}
	}
	return nil
}

func (c *Classifier) matchPurchaseSuggestion(m *message) *models.Command {
	if containsAny(m.norm, purchaseKws) {
		return &models.Command{Action: models.ActionPurchaseSuggestion, Confidence: 1.0}
	}
	return nil
}

// matchSetThreshold needs a keyword plus a bare numeric token; tokens
// before the number (minus the keyword and digits) name the product.
func (c *Classifier) matchSetThreshold(m *message) *models.Command {
	if !containsAny(m.norm, thresholdKws) {
		return nil
	}
	value, idx := firstNumber(m.tokens)
	if idx < 0 || value <= 0 {
		return nil
	}
	var nameParts []string
	for i, tok := range m.tokens {
		if i == idx || numberTokenRe.MatchString(tok) {
			continue
		}
		if tok == "threshold" || tok == "minimum" || tok == "min" || tok == "stock" ||
			tok == "kam" || tok == "se" || tok == "set" || tok == "karo" || tok == "kar" || tok == "do" {
			continue
		}
		nameParts = append(nameParts, tok)
	}
	name := strings.Join(nameParts, " ")
	if name == "" {
		return nil
	}
	return &models.Command{
		Action:      models.ActionSetLowStockThreshold,
		ProductName: name,
		Quantity:    value,
		Confidence:  0.9,
	}
}

func (c *Classifier) matchPredictiveAlert(m *message) *models.Command {
	if containsAny(m.norm, predictiveKws) {
		return &models.Command{Action: models.ActionPredictiveAlert, Confidence: 1.0}
	}
	return nil
}

func (c *Classifier) matchSeasonal(m *message) *models.Command {
	for _, festival := range festivalKws {
		if strings.Contains(m.norm, festival) {
			return &models.Command{
				Action:      models.ActionSeasonalSuggestion,
				ProductName: festival,
				Confidence:  1.0,
			}
		}
	}
	return nil
}

// matchUpdatePrice pairs a price keyword with a bare numeric token. The
// product name comes from the tokens between keyword and number, or
// before the keyword when the number precedes it.
func (c *Classifier) matchUpdatePrice(m *message) *models.Command {
	kwIdx := -1
	for i, tok := range m.tokens {
		for _, kw := range priceKws {
			if tok == strings.TrimSpace(kw) {
				kwIdx = i
				break
			}
		}
		if kwIdx >= 0 {
			break
		}
	}
	if kwIdx < 0 {
		return nil
	}
	price, numIdx := firstNumber(m.tokens)
	if numIdx < 0 || price <= 0 {
		return nil
	}

	var between []string
	if numIdx > kwIdx {
		between = m.tokens[kwIdx+1 : numIdx]
	}
	name := strings.Join(stripJunkWords(between), " ")
	if name == "" {
		// "maggi ka price 15": the name precedes the keyword.
		name = strings.Join(stripJunkWords(m.tokens[:kwIdx]), " ")
	}
	if name == "" {
		return nil
	}
	return &models.Command{
		Action:      models.ActionUpdatePrice,
		ProductName: name,
		Quantity:    price,
		Confidence:  0.9,
	}
}

var priceJunkWords = map[string]bool{
	"ka": true, "ke": true, "ki": true, "new": true, "naya": true, "nayi": true,
	"set": true, "karo": true, "kar": true, "do": true, "update": true,
	"rupaye": true, "rs": true, "rupees": true, "hai": true, "per": true,
	"kg": true, "gm": true, "ml": true, "ltr": true, "piece": true, "packet": true,
}

func stripJunkWords(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if priceJunkWords[tok] || numberTokenRe.MatchString(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (c *Classifier) matchReportSummary(m *message) *models.Command {
	if containsAny(m.norm, reportKws) {
		// Period resolution is deferred to the executor.
		return &models.Command{Action: models.ActionReportSummary, Confidence: 1.0}
	}
	return nil
}

// matchSingleWordFilter treats a lone word as a category/keyword filter
// over the product list ("dal" → every dal variant in the catalog).
func (c *Classifier) matchSingleWordFilter(m *message) *models.Command {
	if len(m.tokens) != 1 || strings.Contains(m.original, " ") {
		return nil
	}
	word := m.tokens[0]
	if blockedSingleWords[word] || numberTokenRe.MatchString(word) || hasDigit(word) {
		return nil
	}
	if alias, ok := categoryAliases[word]; ok {
		word = alias
	}
	return &models.Command{
		Action:      models.ActionListProducts,
		ProductName: word,
		Confidence:  0.8,
	}
}

func (c *Classifier) matchProductList(m *message) *models.Command {
	if containsAny(m.norm, productListKws) {
		return &models.Command{Action: models.ActionListProducts, Confidence: 1.0}
	}
	return nil
}

func (c *Classifier) matchLowStock(m *message) *models.Command {
	if containsAny(m.norm, lowStockKws) || containsAny(m.original, lowStockKws) {
		return &models.Command{Action: models.ActionLowStock, Confidence: 1.0}
	}
	if strings.Contains(m.norm, "low") && containsAny(m.norm, inventoryWords) {
		return &models.Command{Action: models.ActionLowStock, Confidence: 0.9}
	}
	return nil
}

func (c *Classifier) matchTopProductToday(m *message) *models.Command {
	if containsAny(m.norm, todayMarkers) &&
		containsAny(m.norm, []string{"bika", "becha", "sale", "sold"}) &&
		containsAny(m.norm, []string{"sabse zyada", "sabse jyada", "sabse", "most"}) {
		return &models.Command{Action: models.ActionTopProductToday, Confidence: 1.0}
	}
	return nil
}

// stockQuestionJunk are the tokens stripped when extracting a product
// name from a "<product> kitna hai" style question.
var stockQuestionJunk = map[string]bool{
	"kitna": true, "kitni": true, "kitne": true, "how": true, "much": true,
	"hai": true, "hain": true, "h": true, "bacha": true, "bachi": true,
	"stock": true, "batao": true, "kya": true, "mein": true, "me": true,
	"ka": true, "ke": true, "ki": true, "abhi": true,
}

// matchStockQuestion handles "<product> kitna hai" / "how much <product>"
// without digits. The leftover tokens after junk removal name the product.
func (c *Classifier) matchStockQuestion(m *message) *models.Command {
	if hasDigit(m.norm) {
		return nil
	}
	if !containsAny(m.norm, []string{"kitna", "kitni", "kitne", "how much", "bacha hai"}) {
		return nil
	}
	var parts []string
	for _, tok := range m.tokens {
		tok = strings.Trim(tok, ".,?!")
		if tok == "" || stockQuestionJunk[tok] {
			continue
		}
		parts = append(parts, tok)
	}
	if len(parts) == 0 {
		return nil
	}
	return &models.Command{
		Action:      models.ActionCheckStock,
		ProductName: strings.Join(parts, " "),
		Confidence:  0.8,
	}
}

// matchBarcodeDelta handles single-line scanner shorthand:
// "8901000000001 -2" reduces, "+5" adds.
func (c *Classifier) matchBarcodeDelta(m *message) *models.Command {
	fields := strings.Fields(m.norm)
	if len(fields) != 2 {
		return nil
	}
	cmd, ok := parseBarcodeDeltaLine(m.norm)
	if !ok {
		return nil
	}
	return &cmd
}

// matchQuantityWithVerb is the workhorse for "Maggi 3 add kar do" style
// messages: find the first <number>[unit] pattern, then pin the product
// name down with a strict "<product> <qty> <verb>" regex, falling back to
// verb presence plus token-prefix extraction from the original text.
func (c *Classifier) matchQuantityWithVerb(m *message) *models.Command {
	loc := qtyUnitRe.FindStringSubmatchIndex(m.norm)
	if loc == nil {
		return nil
	}
	match := qtyUnitRe.FindStringSubmatch(m.norm)
	qty, err := strconv.ParseFloat(match[1], 64)
	if err != nil || qty <= 0 {
		return nil
	}
	unit := strings.ToLower(match[2])
	switch unit {
	case "g", "gm", "gram", "grams", "ml":
		// Loose items are tracked in base kg/litre units.
		qty = qty / 1000
	}

	qtyToken := strings.TrimSpace(match[0])

	// Strict form: "<product> <qty token> <verb>".
	if cmd := c.strictQuantityPattern(m.norm, qtyToken, qty); cmd != nil {
		return cmd
	}

	// Loose form: any known verb anywhere plus tokens before the first
	// digit-bearing token of the original message.
	action := models.CommandAction("")
	if hasVerbToken(m.tokens, addVerbs) {
		action = models.ActionAddStock
	} else if hasVerbToken(m.tokens, reduceVerbs) {
		action = models.ActionReduceStock
	}
	if action == "" {
		return nil
	}

	name := productBeforeFirstDigit(m)
	if name == "" {
		name = m.original
	}
	return &models.Command{
		Action:      action,
		ProductName: name,
		Quantity:    qty,
		Confidence:  0.7,
	}
}

func (c *Classifier) strictQuantityPattern(norm, qtyToken string, qty float64) *models.Command {
	quoted := regexp.QuoteMeta(qtyToken)
	addRe := regexp.MustCompile(`^(.+?)\s+` + quoted + `\s+(?:` + strings.Join(addVerbs, "|") + `)\b`)
	redRe := regexp.MustCompile(`^(.+?)\s+` + quoted + `\s+(?:` + strings.Join(reduceVerbs, "|") + `)\b`)

	if sub := addRe.FindStringSubmatch(norm); sub != nil {
		return &models.Command{
			Action:      models.ActionAddStock,
			ProductName: strings.TrimSpace(sub[1]),
			Quantity:    qty,
			Confidence:  0.9,
		}
	}
	if sub := redRe.FindStringSubmatch(norm); sub != nil {
		return &models.Command{
			Action:      models.ActionReduceStock,
			ProductName: strings.TrimSpace(sub[1]),
			Quantity:    qty,
			Confidence:  0.9,
		}
	}
	return nil
}

func hasVerbToken(tokens []string, verbs []string) bool {
	for _, tok := range tokens {
		for _, v := range verbs {
			if tok == v {
				return true
			}
		}
	}
	return false
}

// productBeforeFirstDigit takes the original-message tokens preceding the
// first token that contains a digit. Only valid when the original and
// normalized token counts line up, so the index mapping is trustworthy.
func productBeforeFirstDigit(m *message) string {
	origTokens := strings.Fields(m.original)
	if len(origTokens) != len(m.tokens) {
		return ""
	}
	for i, tok := range m.tokens {
		if hasDigit(tok) {
			if i == 0 {
				return ""
			}
			return strings.Join(origTokens[:i], " ")
		}
	}
	return ""
}

func (c *Classifier) matchBareBarcode(m *message) *models.Command {
	if barcodeRe.MatchString(m.norm) {
		return &models.Command{
			Action:      models.ActionCheckStock,
			ProductName: m.norm,
			Confidence:  1.0,
		}
	}
	return nil
}

// matchShortProductQuery: a 1–3 word digit-less message that carries none
// of the generic keywords is treated as a stock query for that product.
func (c *Classifier) matchShortProductQuery(m *message) *models.Command {
	if hasDigit(m.norm) {
		return nil
	}
	if len(m.tokens) < 1 || len(m.tokens) > 3 {
		return nil
	}
	for _, tok := range m.tokens {
		for _, blocked := range shortQueryBlocked {
			if tok == blocked {
				return nil
			}
		}
	}
	return &models.Command{
		Action:      models.ActionCheckStock,
		ProductName: m.original,
		Confidence:  0.7,
	}
}

func (c *Classifier) matchGenericInventoryWord(m *message) *models.Command {
	for _, tok := range m.tokens {
		for _, w := range inventoryWords {
			if tok == w {
				return &models.Command{Action: models.ActionListProducts, Confidence: 0.8}
			}
		}
	}
	return nil
}

// matchAmbiguousStock: a digit-less "stock" mention with no query marker
// defaults to showing everything.
func (c *Classifier) matchAmbiguousStock(m *message) *models.Command {
	if !strings.Contains(m.norm, "stock") || hasDigit(m.norm) {
		return nil
	}
	if containsAny(m.norm, stockQueryMarkers) {
		return nil
	}
	return &models.Command{Action: models.ActionListProducts, Confidence: 0.7}
}
