// Package render turns typed execution results into WhatsApp reply text.
// Every result type has an English and a Hindi (Hinglish) template; the
// language comes from the detector, not from the template itself.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"kirana-service/internal/models"
	"kirana-service/internal/nlp"
)

// Renderer holds no state; it exists so handlers can depend on an
// interface-shaped thing and tests can call it directly.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// Render produces the reply for a result in the user's language.
// Failures carry their own pre-built bilingual message.
func (r *Renderer) Render(result models.ExecResult, lang nlp.Language) string {
	if !result.Ok() {
		return result.FailureMessage()
	}
	hindi := lang == nlp.LangHindi

	switch v := result.(type) {
	case *models.StockMutationResult:
		return renderStockMutation(v, hindi)
	case *models.CheckStockResult:
		if hindi {
			return fmt.Sprintf("📦 %s: %s %s stock mein hai", v.ProductName, qty(v.CurrentStock), v.Unit)
		}
		return fmt.Sprintf("📦 %s: %s %s in stock", v.ProductName, qty(v.CurrentStock), v.Unit)
	case *models.AdjustStockResult:
		return renderAdjust(v, hindi)
	case *models.UndoResult:
		if hindi {
			return fmt.Sprintf("↩️ Last entry undo ho gayi (%s %s %s)\n📦 %s ab: %s %s",
				qty(v.Quantity), v.Unit, hindiTxType(v.UndoneType), v.ProductName, qty(v.RestoredStock), v.Unit)
		}
		return fmt.Sprintf("↩️ Undid last entry (%s of %s %s)\n📦 %s now: %s %s",
			string(v.UndoneType), qty(v.Quantity), v.Unit, v.ProductName, qty(v.RestoredStock), v.Unit)
	case *models.UpdatePriceResult:
		return renderUpdatePrice(v, hindi)
	case *models.SetThresholdResult:
		if hindi {
			return fmt.Sprintf("🔔 %s ka low-stock alert ab %s par set hai", v.ProductName, qty(v.Threshold))
		}
		return fmt.Sprintf("🔔 Low-stock alert for %s set at %s", v.ProductName, qty(v.Threshold))
	case *models.ListProductsResult:
		return renderProductList(v, hindi)
	case *models.LowStockResult:
		return renderLowStock(v, hindi)
	case *models.SalesSummaryResult:
		return renderSalesSummary(v, hindi)
	case *models.ProfitResult:
		return renderProfit(v, hindi)
	case *models.ZeroSaleResult:
		return renderZeroSale(v, hindi)
	case *models.ExpiryResult:
		return renderExpiry(v, hindi)
	case *models.PredictiveAlertResult:
		return renderPredictive(v, hindi)
	case *models.PurchaseSuggestionResult:
		return renderPurchase(v, hindi)
	case *models.SeasonalSuggestionResult:
		return renderSeasonal(v, hindi)
	case *models.UdharMutationResult:
		return renderUdharMutation(v, hindi)
	case *models.UdharSummaryResult:
		return renderUdharSummary(v, hindi)
	case *models.CustomerUdharResult:
		return renderCustomerUdhar(v, hindi)
	case *models.HelpResult:
		return helpText(hindi)
	case *models.BatchResult:
		return renderBatch(r, v, lang)
	default:
		if hindi {
			return "✅ Ho gaya!"
		}
		return "✅ Done!"
	}
}

func renderStockMutation(v *models.StockMutationResult, hindi bool) string {
	var b strings.Builder
	if v.Revenue > 0 || v.NewStock < v.PreviousStock {
		// sale / reduction
		if hindi {
			fmt.Fprintf(&b, "✅ %s: %s %s bik gaya\n📦 Stock: %s → %s %s",
				v.ProductName, qty(v.Quantity), v.Unit, qty(v.PreviousStock), qty(v.NewStock), v.Unit)
		} else {
			fmt.Fprintf(&b, "✅ Sold %s %s of %s\n📦 Stock: %s → %s %s",
				qty(v.Quantity), v.Unit, v.ProductName, qty(v.PreviousStock), qty(v.NewStock), v.Unit)
		}
		if v.Revenue > 0 {
			fmt.Fprintf(&b, "\n💰 Sale: ₹%s", money(v.Revenue))
		}
	} else {
		if hindi {
			fmt.Fprintf(&b, "✅ %s: %s %s add ho gaya!\n📦 Stock: %s → %s %s",
				v.ProductName, qty(v.Quantity), v.Unit, qty(v.PreviousStock), qty(v.NewStock), v.Unit)
		} else {
			fmt.Fprintf(&b, "✅ Added %s %s of %s\n📦 Stock: %s → %s %s",
				qty(v.Quantity), v.Unit, v.ProductName, qty(v.PreviousStock), qty(v.NewStock), v.Unit)
		}
	}
	if v.LowStockAlert {
		if hindi {
			fmt.Fprintf(&b, "\n\n⚠️ Stock kam ho gaya! Sirf %s %s bacha hai (alert level: %s)",
				qty(v.NewStock), v.Unit, qty(v.Threshold))
		} else {
			fmt.Fprintf(&b, "\n\n⚠️ Low stock! Only %s %s left (alert level: %s)",
				qty(v.NewStock), v.Unit, qty(v.Threshold))
		}
	}
	return b.String()
}

func renderAdjust(v *models.AdjustStockResult, hindi bool) string {
	if v.Delta == 0 {
		if hindi {
			return fmt.Sprintf("ℹ️ %s ki last entry pehle se hi %s thi, kuch change nahi hua.", v.ProductName, qty(v.NewQuantity))
		}
		return fmt.Sprintf("ℹ️ Last entry for %s was already %s, nothing changed.", v.ProductName, qty(v.NewQuantity))
	}
	if hindi {
		return fmt.Sprintf("✏️ Theek kar diya: %s ki last entry %s → %s\n📦 Stock ab: %s %s",
			v.ProductName, qty(v.OldQuantity), qty(v.NewQuantity), qty(v.NewStock), v.Unit)
	}
	return fmt.Sprintf("✏️ Corrected: last entry for %s changed %s → %s\n📦 Stock now: %s %s",
		v.ProductName, qty(v.OldQuantity), qty(v.NewQuantity), qty(v.NewStock), v.Unit)
}

func renderUpdatePrice(v *models.UpdatePriceResult, hindi bool) string {
	if v.HadOldPrice {
		if hindi {
			return fmt.Sprintf("💰 %s ka rate ₹%s se ₹%s ho gaya", v.ProductName, money(v.OldPrice), money(v.NewPrice))
		}
		return fmt.Sprintf("💰 Price of %s updated: ₹%s → ₹%s", v.ProductName, money(v.OldPrice), money(v.NewPrice))
	}
	if hindi {
		return fmt.Sprintf("💰 %s ka rate ₹%s set ho gaya", v.ProductName, money(v.NewPrice))
	}
	return fmt.Sprintf("💰 Price of %s set to ₹%s", v.ProductName, money(v.NewPrice))
}

func renderProductList(v *models.ListProductsResult, hindi bool) string {
	if v.Total == 0 {
		if v.Filter != "" {
			if hindi {
				return fmt.Sprintf("📋 '%s' ka koi product stock mein nahi hai.", v.Filter)
			}
			return fmt.Sprintf("📋 No products matching '%s' in stock.", v.Filter)
		}
		if hindi {
			return "📋 Abhi koi product stock mein nahi hai. 'Maggi 10 add karo' se shuru karo!"
		}
		return "📋 No products in stock yet. Start with 'add 10 Maggi'!"
	}

	var b strings.Builder
	if hindi {
		fmt.Fprintf(&b, "📋 Aapke products (%d):\n", v.Total)
	} else {
		fmt.Fprintf(&b, "📋 Your products (%d):\n", v.Total)
	}
	for _, p := range v.Products {
		fmt.Fprintf(&b, "• %s: %s %s", p.Name, qty(p.Stock), p.Unit)
		if p.Price > 0 {
			fmt.Fprintf(&b, " @ ₹%s", money(p.Price))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLowStock(v *models.LowStockResult, hindi bool) string {
	if v.Total == 0 {
		if hindi {
			return "✅ Sab theek! Koi product kam nahi hai."
		}
		return "✅ All good! Nothing is running low."
	}
	var b strings.Builder
	if hindi {
		fmt.Fprintf(&b, "⚠️ Kam stock wale products (%d):\n", v.Total)
	} else {
		fmt.Fprintf(&b, "⚠️ Low stock products (%d):\n", v.Total)
	}
	for _, p := range v.Products {
		fmt.Fprintf(&b, "• %s: %s %s\n", p.Name, qty(p.Stock), p.Unit)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSalesSummary(v *models.SalesSummaryResult, hindi bool) string {
	if v.TopProductName != "" {
		if hindi {
			return fmt.Sprintf("🏆 Aaj sabse zyada bika: %s (%s bika)", v.TopProductName, qty(v.TopProductQuantity))
		}
		return fmt.Sprintf("🏆 Today's best seller: %s (%s sold)", v.TopProductName, qty(v.TopProductQuantity))
	}

	if v.TotalItemsSold == 0 {
		if hindi {
			return "📊 Aaj abhi tak koi sale nahi hui."
		}
		return "📊 No sales recorded today yet."
	}

	var b strings.Builder
	if hindi {
		b.WriteString("📊 Aaj ka hisab:\n")
	} else {
		b.WriteString("📊 Today's summary:\n")
	}
	for _, p := range v.ProductsSold {
		fmt.Fprintf(&b, "• %s: %s", p.Name, qty(p.Quantity))
		if p.Revenue > 0 {
			fmt.Fprintf(&b, " (₹%s)", money(p.Revenue))
		}
		b.WriteString("\n")
	}
	if hindi {
		fmt.Fprintf(&b, "\nTotal: %s items, ₹%s", qty(v.TotalItemsSold), money(v.TotalRevenue))
	} else {
		fmt.Fprintf(&b, "\nTotal: %s items, ₹%s", qty(v.TotalItemsSold), money(v.TotalRevenue))
	}
	return b.String()
}

func profitLabel(label string, hindi bool) string {
	if hindi {
		switch label {
		case "today":
			return "Aaj ka"
		case "week":
			return "Is hafte ka"
		case "month":
			return "Is mahine ka"
		case "year":
			return "Is saal ka"
		}
		return label
	}
	switch label {
	case "today":
		return "Today's"
	case "week":
		return "This week's"
	case "month":
		return "This month's"
	case "year":
		return "This year's"
	}
	return label
}

func renderProfit(v *models.ProfitResult, hindi bool) string {
	label := profitLabel(v.PeriodLabel, hindi)
	if v.Revenue == 0 {
		if hindi {
			return fmt.Sprintf("💰 %s koi sale nahi hui.", label)
		}
		return fmt.Sprintf("💰 %s sales: none yet.", label)
	}
	if !v.CostKnown {
		if hindi {
			return fmt.Sprintf("💰 %s total: ₹%s\nℹ️ Cost price set nahi hai, isliye profit sale ke barabar dikh raha hai.", label, money(v.Revenue))
		}
		return fmt.Sprintf("💰 %s total: ₹%s\nℹ️ No cost prices set, so profit is shown as revenue.", label, money(v.Revenue))
	}
	if hindi {
		return fmt.Sprintf("💰 %s profit: ₹%s\n• Sale: ₹%s\n• Cost: ₹%s", label, money(v.Profit), money(v.Revenue), money(v.Cost))
	}
	return fmt.Sprintf("💰 %s profit: ₹%s\n• Revenue: ₹%s\n• Cost: ₹%s", label, money(v.Profit), money(v.Revenue), money(v.Cost))
}

func renderZeroSale(v *models.ZeroSaleResult, hindi bool) string {
	if v.Total == 0 {
		if hindi {
			return "🎉 Sab kuch bika aaj! Koi product zero-sale nahi hai."
		}
		return "🎉 Everything moved today! No zero-sale products."
	}
	var b strings.Builder
	if hindi {
		fmt.Fprintf(&b, "🐢 Aaj nahi bike (%d products):\n", v.Total)
	} else {
		fmt.Fprintf(&b, "🐢 No sales today (%d products):\n", v.Total)
	}
	for _, p := range v.Products {
		fmt.Fprintf(&b, "• %s: %s %s stock mein\n", p.Name, qty(p.Stock), p.Unit)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderExpiry(v *models.ExpiryResult, hindi bool) string {
	if len(v.Expired) == 0 && len(v.Expiring) == 0 {
		if hindi {
			return fmt.Sprintf("✅ Agle %d din mein kuch bhi expire nahi ho raha.", v.WindowDays)
		}
		return fmt.Sprintf("✅ Nothing expiring in the next %d days.", v.WindowDays)
	}
	var b strings.Builder
	if len(v.Expired) > 0 {
		if hindi {
			b.WriteString("❌ Expire ho chuke:\n")
		} else {
			b.WriteString("❌ Already expired:\n")
		}
		for _, item := range v.Expired {
			writeExpiryLine(&b, item)
		}
	}
	if len(v.Expiring) > 0 {
		if len(v.Expired) > 0 {
			b.WriteString("\n")
		}
		if hindi {
			fmt.Fprintf(&b, "⏳ Agle %d din mein expire honge:\n", v.WindowDays)
		} else {
			fmt.Fprintf(&b, "⏳ Expiring within %d days:\n", v.WindowDays)
		}
		for _, item := range v.Expiring {
			writeExpiryLine(&b, item)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeExpiryLine(b *strings.Builder, item models.ExpiryItem) {
	fmt.Fprintf(b, "• %s", item.Name)
	if item.BatchID != "" {
		fmt.Fprintf(b, " (batch %s)", item.BatchID)
	}
	fmt.Fprintf(b, ": %s %s, %s\n", qty(item.Qty), item.Unit, item.ExpiryDate)
}

func renderPredictive(v *models.PredictiveAlertResult, hindi bool) string {
	if len(v.Alerts) == 0 {
		if hindi {
			return "✅ Is hafte kuch bhi khatam hone wala nahi hai."
		}
		return "✅ Nothing is predicted to run out this week."
	}
	var b strings.Builder
	if hindi {
		b.WriteString("🔮 Jaldi khatam hone wale:\n")
	} else {
		b.WriteString("🔮 Predicted stockouts:\n")
	}
	for _, a := range v.Alerts {
		icon := urgencyIcon(a.Urgency)
		if hindi {
			fmt.Fprintf(&b, "%s %s: %s %s bacha, ~%.0f din mein khatam\n",
				icon, a.Name, qty(a.CurrentStock), a.Unit, a.DaysRemaining)
		} else {
			fmt.Fprintf(&b, "%s %s: %s %s left, ~%.0f days to stockout\n",
				icon, a.Name, qty(a.CurrentStock), a.Unit, a.DaysRemaining)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func urgencyIcon(urgency string) string {
	switch urgency {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	default:
		return "🟡"
	}
}

func renderPurchase(v *models.PurchaseSuggestionResult, hindi bool) string {
	if len(v.Suggestions) == 0 {
		if hindi {
			return "✅ Abhi kuch order karne ki zaroorat nahi hai."
		}
		return "✅ Nothing needs reordering right now."
	}
	var b strings.Builder
	if hindi {
		b.WriteString("🛒 Yeh order kar lo:\n")
	} else {
		b.WriteString("🛒 Suggested purchases:\n")
	}
	for _, sug := range v.Suggestions {
		icon := urgencyIcon(sug.Urgency)
		if hindi {
			fmt.Fprintf(&b, "%s %s: %s %s mangao (pichle mahine %s bika, abhi %s hai)\n",
				icon, sug.Name, qty(sug.SuggestedQty), sug.Unit, qty(sug.LastMonthSold), qty(sug.CurrentStock))
		} else {
			fmt.Fprintf(&b, "%s %s: order %s %s (sold %s last month, %s in stock)\n",
				icon, sug.Name, qty(sug.SuggestedQty), sug.Unit, qty(sug.LastMonthSold), qty(sug.CurrentStock))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSeasonal(v *models.SeasonalSuggestionResult, hindi bool) string {
	if len(v.Items) == 0 {
		if hindi {
			return fmt.Sprintf("🤔 '%s' ke liye koi suggestion nahi mila. Diwali, Holi, Eid, Rakhi try karo.", v.Festival)
		}
		return fmt.Sprintf("🤔 No suggestions for '%s'. Try Diwali, Holi, Eid or Rakhi.", v.Festival)
	}
	var b strings.Builder
	if hindi {
		fmt.Fprintf(&b, "🎉 %s ke liye stock kar lo:\n", v.Festival)
	} else {
		fmt.Fprintf(&b, "🎉 Stock up for %s:\n", v.Festival)
	}
	for _, item := range v.Items {
		fmt.Fprintf(&b, "• %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderUdharMutation(v *models.UdharMutationResult, hindi bool) string {
	if v.Payment {
		if hindi {
			return fmt.Sprintf("💸 %s ne ₹%s diye\n📒 Baki udhar: ₹%s", v.CustomerName, money(v.Amount), money(v.Balance))
		}
		return fmt.Sprintf("💸 Received ₹%s from %s\n📒 Remaining udhar: ₹%s", money(v.Amount), v.CustomerName, money(v.Balance))
	}
	if hindi {
		return fmt.Sprintf("📒 %s ka ₹%s udhar likh liya\n📒 Total udhar: ₹%s", v.CustomerName, money(v.Amount), money(v.Balance))
	}
	return fmt.Sprintf("📒 Noted ₹%s udhar for %s\n📒 Total udhar: ₹%s", money(v.Amount), v.CustomerName, money(v.Balance))
}

func renderUdharSummary(v *models.UdharSummaryResult, hindi bool) string {
	if len(v.Customers) == 0 {
		if hindi {
			return "✅ Kisi ka udhar baki nahi hai!"
		}
		return "✅ No outstanding udhar!"
	}
	var b strings.Builder
	if hindi {
		b.WriteString("📒 Udhar khata:\n")
	} else {
		b.WriteString("📒 Udhar ledger:\n")
	}
	for _, c := range v.Customers {
		fmt.Fprintf(&b, "• %s: ₹%s\n", c.CustomerName, money(c.Balance))
	}
	fmt.Fprintf(&b, "\nTotal: ₹%s", money(v.Total))
	return b.String()
}

func renderCustomerUdhar(v *models.CustomerUdharResult, hindi bool) string {
	var b strings.Builder
	settled := v.Balance <= models.UdharSettledEpsilon && v.Balance >= -models.UdharSettledEpsilon
	switch {
	case settled && hindi:
		fmt.Fprintf(&b, "✅ %s ka hisab barabar hai!", v.CustomerName)
	case settled:
		fmt.Fprintf(&b, "✅ %s is all settled!", v.CustomerName)
	case hindi:
		fmt.Fprintf(&b, "📒 %s ka udhar: ₹%s", v.CustomerName, money(v.Balance))
	default:
		fmt.Fprintf(&b, "📒 Udhar for %s: ₹%s", v.CustomerName, money(v.Balance))
	}
	if len(v.Entries) > 0 {
		b.WriteString("\n")
		for _, e := range v.Entries {
			date := e.Timestamp.Format("02 Jan")
			if e.Amount < 0 {
				fmt.Fprintf(&b, "• %s: -₹%s\n", date, money(-e.Amount))
			} else {
				fmt.Fprintf(&b, "• %s: +₹%s\n", date, money(e.Amount))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderBatch(r *Renderer, v *models.BatchResult, lang nlp.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 Batch update (%d items):\n\n", len(v.Lines))
	for i, line := range v.Lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(r.Render(line.Result, lang), "\n", " "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func helpText(hindi bool) string {
	if hindi {
		return strings.Join([]string{
			"🙏 Namaste! Main aapka stock assistant hoon. Aise likho:",
			"",
			"📦 Stock:",
			"• Maggi 5 add karo",
			"• 3 Parle-G bik gaya",
			"• Cheeni kitni hai?",
			"• Maggi 10 nahi 8 tha (galti theek karo)",
			"• undo (last entry wapas)",
			"",
			"📒 Udhar:",
			"• Ramesh ko 200 ka udhar diya",
			"• Ramesh ne 100 de diye",
			"• udhar list",
			"",
			"📊 Report:",
			"• aaj ka hisab / aaj ka profit",
			"• kya kam hai / kya mangana hai",
			"• expiry check",
			"",
			"🎤 Voice message bhi chalega!",
		}, "\n")
	}
	return strings.Join([]string{
		"🙏 Hi! I am your stock assistant. Try:",
		"",
		"📦 Stock:",
		"• add 5 Maggi",
		"• sold 3 Parle-G",
		"• how much Cheeni?",
		"• Maggi 10 nahi 8 (fix a mistake)",
		"• undo (revert last entry)",
		"",
		"📒 Udhar:",
		"• gave Ramesh 200 udhar",
		"• Ramesh paid 100",
		"• udhar list",
		"",
		"📊 Reports:",
		"• today's summary / today's profit",
		"• what is low / what to order",
		"• expiry check",
		"",
		"🎤 Voice messages work too!",
	}, "\n")
}

// hindiTxType labels a ledger entry type in the undo confirmation.
func hindiTxType(t models.TransactionType) string {
	switch t {
	case models.TxAddStock:
		return "add hui thi"
	case models.TxReduceStock, models.TxSale:
		return "bika tha"
	case models.TxAdjustment:
		return "adjust hui thi"
	}
	return string(t)
}

// qty prints quantities without trailing zeros (5, 2.5, 0.25).
func qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// money prints rupees with thousands separators and two decimals.
func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]
	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)
	out := strings.Join(parts, ",") + frac
	if neg {
		return "-" + out
	}
	return out
}
