package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"kirana-service/internal/models"
)

// barcodeRe matches an 8–16 digit barcode token.
var barcodeRe = regexp.MustCompile(`^\d{8,16}$`)

// ParseBatch recognizes multi-line scanner input: every non-empty line
// must be "<barcode> <±delta>". It is all-or-nothing — if any line fails
// to parse, the whole message falls through to single-command handling.
func ParseBatch(text string) ([]models.Command, bool) {
	lines := strings.Split(text, "\n")

	var commands []models.Command
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, ok := parseBarcodeDeltaLine(line)
		if !ok {
			return nil, false
		}
		commands = append(commands, cmd)
	}

	// A single line is not a batch; the classifier's own barcode rule
	// handles it with full priority ordering.
	if len(commands) < 2 {
		return nil, false
	}
	return commands, true
}

// parseBarcodeDeltaLine parses "<8-16 digit barcode> <signed non-zero
// float>" into an add or reduce command.
func parseBarcodeDeltaLine(line string) (models.Command, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return models.Command{}, false
	}
	barcode, delta := fields[0], fields[1]
	if !barcodeRe.MatchString(barcode) {
		return models.Command{}, false
	}
	if !strings.HasPrefix(delta, "+") && !strings.HasPrefix(delta, "-") {
		return models.Command{}, false
	}
	qty, err := strconv.ParseFloat(delta, 64)
	if err != nil || qty == 0 {
		return models.Command{}, false
	}

	action := models.ActionAddStock
	if qty < 0 {
		action = models.ActionReduceStock
		qty = -qty
	}
	return models.Command{
		Action:      action,
		ProductName: barcode,
		Quantity:    qty,
		Confidence:  1.0,
		RawMessage:  line,
	}, true
}
