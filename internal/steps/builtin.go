package steps

import (
	"fmt"
	"sort"

	"github.com/example/coursewizard/internal/domain"
)

func int64Ptr(n int64) *int64 { return &n }

var contentStep = Step{
	Title: "Step 2: Content",
	Fields: []Field{
		{Name: "description", Label: "Description", Kind: domain.KindRichText},
		{Name: "attachments", Label: "Attachments", Kind: domain.KindFiles, MaxFiles: 5},
	},
}

var reviewStep = Step{
	Title: "Step 3: Review & submit",
	Note:  "Please review your data and click Submit.",
}

// Feedback is the three step feedback wizard.
var Feedback = MustNew("feedback",
	Step{
		Title: "Step 1: Basic details",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: domain.KindString, Required: true, MaxLength: 255},
			{Name: "category", Label: "Category", Kind: domain.KindString, MaxLength: 100},
		},
	},
	contentStep,
	reviewStep,
)

// CatQuiz is the six step wizard used to alter the settings of a CAT quiz.
var CatQuiz = MustNew("catquiz",
	Step{
		Title: "Step 1: Select CAT-Quiz",
		Note:  "Please select the CAT-Quiz that you want to alter settings on.",
		Fields: []Field{
			{Name: "select_catquiz", Label: "CAT-Quizzes", Kind: domain.KindInt, Required: true, Min: int64Ptr(1)},
		},
	},
	contentStep,
	reviewStep,
	Step{Title: "Step 4"},
	Step{Title: "Step 5"},
	Step{Title: "Step 6"},
)

var builtins = map[string]*Table{
	Feedback.Name(): Feedback,
	CatQuiz.Name():  CatQuiz,
}

// Builtin returns the built-in table called name.
func Builtin(name string) (*Table, error) {
	t, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown step table %q (available: %v)", name, BuiltinNames())
	}
	return t, nil
}

// BuiltinNames lists the built-in table names in order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
