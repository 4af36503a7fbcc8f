package forest

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// ClassMetrics holds per-class validation scores.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a per-class classification report with macro averages.
type Report struct {
	Classes        []ClassMetrics `json:"classes"`
	Accuracy       float64        `json:"accuracy"`
	MacroPrecision float64        `json:"macro_precision"`
	MacroRecall    float64        `json:"macro_recall"`
	MacroF1        float64        `json:"macro_f1"`
	Support        int            `json:"support"`
}

// Accuracy returns the fraction of matching labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// DistinctClasses counts the distinct labels in y.
func DistinctClasses(y []int) int {
	seen := make(map[int]struct{})
	for _, label := range y {
		seen[label] = struct{}{}
	}
	return len(seen)
}

// Evaluate builds a report over every class that appears in yTrue or yPred.
// names maps class index to a display name.
func Evaluate(yTrue, yPred []int, names []string) Report {
	k := len(names)
	tp := make([]int, k)
	predicted := make([]int, k)
	actual := make([]int, k)
	for i := range yTrue {
		actual[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		}
	}

	r := Report{Accuracy: Accuracy(yTrue, yPred), Support: len(yTrue)}
	for c := 0; c < k; c++ {
		if actual[c] == 0 && predicted[c] == 0 {
			continue
		}
		m := ClassMetrics{Class: names[c], Support: actual[c]}
		if predicted[c] > 0 {
			m.Precision = float64(tp[c]) / float64(predicted[c])
		}
		if actual[c] > 0 {
			m.Recall = float64(tp[c]) / float64(actual[c])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)
		r.MacroPrecision += m.Precision
		r.MacroRecall += m.Recall
		r.MacroF1 += m.F1
	}
	if n := float64(len(r.Classes)); n > 0 {
		r.MacroPrecision /= n
		r.MacroRecall /= n
		r.MacroF1 /= n
	}
	return r
}

// String renders the report as an aligned table.
func (r Report) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, c := range r.Classes {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", c.Class, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(w, "accuracy\t\t\t%.2f\t%d\t\n", r.Accuracy, r.Support)
	fmt.Fprintf(w, "macro avg\t%.2f\t%.2f\t%.2f\t%d\t\n", r.MacroPrecision, r.MacroRecall, r.MacroF1, r.Support)
	_ = w.Flush()
	return b.String()
}
