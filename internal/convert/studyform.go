package convert

import (
	"net/url"
	"strconv"

	"github.com/and161185/flashcards/internal/study"
)

// Study-state form field names.
const (
	FieldTotal     = "total"
	FieldIndex     = "index"
	FieldFlipped   = "flipped"
	FieldCorrect   = "correct"
	FieldIncorrect = "incorrect"
	FieldComplete  = "complete"
	FieldAction    = "action"
)

// StudyStateFromForm reads the hidden study fields. Any malformed number yields
// study.ErrInvalidState.
func StudyStateFromForm(f url.Values) (study.State, error) {
	var st study.State
	ints := []struct {
		name string
		dst  *int
	}{
		{FieldTotal, &st.Total},
		{FieldIndex, &st.Index},
		{FieldCorrect, &st.Correct},
		{FieldIncorrect, &st.Incorrect},
	}
	for _, it := range ints {
		n, err := strconv.Atoi(f.Get(it.name))
		if err != nil {
			return study.State{}, study.ErrInvalidState
		}
		*it.dst = n
	}
	st.Flipped = formBool(f.Get(FieldFlipped))
	st.Complete = formBool(f.Get(FieldComplete))
	return st, nil
}

// StudyStateFields renders a state as hidden field values, in a stable order.
func StudyStateFields(st study.State) [][2]string {
	return [][2]string{
		{FieldTotal, strconv.Itoa(st.Total)},
		{FieldIndex, strconv.Itoa(st.Index)},
		{FieldFlipped, strconv.FormatBool(st.Flipped)},
		{FieldCorrect, strconv.Itoa(st.Correct)},
		{FieldIncorrect, strconv.Itoa(st.Incorrect)},
		{FieldComplete, strconv.FormatBool(st.Complete)},
	}
}

func formBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
