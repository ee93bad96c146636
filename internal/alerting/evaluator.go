// Package alerting evaluates sensor windows against the catalog's threshold
// rules and builds the alert records published on the alert channel.
package alerting

import (
	"encoding/json"
	"fmt"

	"github.com/udite/city-telemetry/internal/catalog"
	"github.com/udite/city-telemetry/internal/event"
)

// minWindowSize suppresses alerting until a sensor has accumulated enough
// history to avoid false positives on startup.
const minWindowSize = 5

const alertType = "ALERT"

// Alert is the record published on the shared alert channel.
type Alert struct {
	Timestamp string   `json:"timestamp"`
	Type      string   `json:"type"`
	Source    string   `json:"source"`
	Details   []string `json:"details"`
}

// NewAlert builds an alert record for a category with one detail string per
// triggered rule.
func NewAlert(timestamp string, c event.Category, details []string) *Alert {
	return &Alert{
		Timestamp: timestamp,
		Type:      alertType,
		Source:    c.SourceLabel(),
		Details:   details,
	}
}

// Encode serializes the alert for publication.
func (a *Alert) Encode() ([]byte, error) {
	return json.Marshal(a)
}

// DecodeAlert deserializes an alert record.
func DecodeAlert(data []byte) (*Alert, error) {
	var a Alert
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Evaluator applies threshold rules to sensor windows.
type Evaluator struct{}

// NewEvaluator creates an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns one human-readable detail string per triggered rule in the
// category's threshold table, in catalog order. It returns nil when the
// window is shorter than the cold-start guard or the category has no rules.
// Window entries that do not carry a rule's field are skipped.
func (e *Evaluator) Evaluate(c event.Category, window []event.Event) []string {
	if len(window) < minWindowSize {
		return nil
	}
	schema, ok := catalog.Lookup(c)
	if !ok || len(schema.Thresholds) == 0 {
		return nil
	}

	var details []string
	for _, rule := range schema.Thresholds {
		values := collect(window, rule.Path)
		if len(values) == 0 {
			continue
		}

		switch rule.Kind {
		case catalog.ThresholdEnumFrequency:
			count := 0
			for _, v := range values {
				if isBad(v, rule.BadValues) {
					count++
				}
			}
			if count >= rule.MinCount {
				details = append(details, fmt.Sprintf("%s is %v (Critical frequency: %d/%d)",
					rule.Path.Field, values[len(values)-1], count, len(values)))
			}

		case catalog.ThresholdAverage:
			nums := numeric(values)
			if len(nums) == 0 {
				continue
			}
			avg := mean(nums)
			switch rule.Op {
			case catalog.OpGreater:
				if avg > rule.Limit {
					details = append(details, fmt.Sprintf("%s average %.2f > %.1f",
						rule.Path.Field, avg, rule.Limit))
				}
			case catalog.OpLess:
				if avg < rule.Limit {
					details = append(details, fmt.Sprintf("%s average %.2f < %.1f",
						rule.Path.Field, avg, rule.Limit))
				}
			}
		}
	}
	return details
}

func collect(window []event.Event, path catalog.FieldPath) []any {
	values := make([]any, 0, len(window))
	for _, evt := range window {
		if v, ok := evt.FieldValue(path.Group, path.Field); ok {
			values = append(values, v)
		}
	}
	return values
}

func isBad(value any, bad []string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, b := range bad {
		if s == b {
			return true
		}
	}
	return false
}

func numeric(values []any) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := v.(float64); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

func mean(nums []float64) float64 {
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}
