package join

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
)

type month struct {
	Name    string
	Revenue float64
}

func byName(m month, _ int) string { return m.Name }

func render(parent *scene.Element, sched *transition.Scheduler, data []month) *Join[month] {
	j := Select[month](parent, "rect.bar", sched).Data(data, byName)
	j.Apply(sched.Transition(500*time.Millisecond), Handlers[month]{
		Enter: func(el *scene.Element, d month, _ int) {
			el.SetNum("height", 0)
		},
		Update: func(el *scene.Element, d month, _ int, tr *transition.Transition) {
			tr.AttrNum(el, "height", d.Revenue)
		},
		Exit: func(el *scene.Element, tr *transition.Transition) {
			tr.AttrNum(el, "height", 0)
		},
	})
	return j
}

func TestDiff(t *testing.T) {
	got := Diff([]string{"a", "b", "c"}, []string{"c", "d", "a", "d"})
	want := Result[string]{
		Enter:  []string{"d"},
		Update: []string{"c", "a"},
		Exit:   []string{"b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
}

func TestMembershipMatchesData(t *testing.T) {
	tests := []struct {
		name  string
		steps [][]string
	}{
		{"grow", [][]string{{"a"}, {"a", "b", "c"}}},
		{"shrink", [][]string{{"a", "b", "c"}, {"b"}}},
		{"replace", [][]string{{"a", "b"}, {"c", "d"}}},
		{"empty clears", [][]string{{"a", "b"}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := scene.New("g")
			sched := transition.NewScheduler()
			for _, keys := range tt.steps {
				data := make([]month, len(keys))
				for i, k := range keys {
					data[i] = month{Name: k, Revenue: float64(10 * (i + 1))}
				}
				render(root, sched, data)
				sched.Flush()
				if got := root.Count("rect.bar"); got != len(keys) {
					t.Errorf("element count = %d, want %d", got, len(keys))
				}
			}
		})
	}
}

func TestIdenticalRebindHasNoEnterOrExit(t *testing.T) {
	root := scene.New("g")
	sched := transition.NewScheduler()
	data := []month{{"Jan", 10}, {"Feb", 20}}
	render(root, sched, data)
	sched.Flush()

	j := render(root, sched, data)
	if len(j.Enter) != 0 || len(j.Exit) != 0 || len(j.Update) != 2 {
		t.Errorf("enter/update/exit = %d/%d/%d, want 0/2/0", len(j.Enter), len(j.Update), len(j.Exit))
	}
}

func TestExistingElementsKeepOrder(t *testing.T) {
	root := scene.New("g")
	sched := transition.NewScheduler()
	render(root, sched, []month{{"a", 1}, {"b", 2}})
	sched.Flush()
	render(root, sched, []month{{"c", 3}, {"b", 2}, {"a", 1}})
	sched.Flush()

	sel := Select[month](root, "rect.bar", sched)
	if diff := cmp.Diff([]string{"a", "b", "c"}, sel.Keys()); diff != "" {
		t.Errorf("document order mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicatesBindFirst(t *testing.T) {
	root := scene.New("g")
	sched := transition.NewScheduler()
	j := render(root, sched, []month{{"a", 1}, {"a", 99}, {"b", 2}})
	sched.Flush()

	if len(j.Duplicates) != 1 || j.Duplicates[0].Revenue != 99 {
		t.Errorf("Duplicates = %v, want the second a", j.Duplicates)
	}
	if got := root.ByKey("a").Num("height"); got != 1 {
		t.Errorf("height of a = %v, want 1 (first occurrence)", got)
	}
}

func TestExitRemovedAtTransitionEnd(t *testing.T) {
	root := scene.New("g")
	sched := transition.NewScheduler()
	render(root, sched, []month{{"a", 10}, {"b", 20}})
	sched.Flush()

	j := render(root, sched, []month{{"a", 10}})
	exiting := j.Exit[0]
	sched.Advance(250 * time.Millisecond)
	if !exiting.Attached(root) {
		t.Fatal("exiting element removed before transition end")
	}
	if got := Select[month](root, "rect.bar", sched).Keys(); len(got) != 1 {
		t.Errorf("live keys during exit = %v, want [a]", got)
	}
	sched.Advance(250 * time.Millisecond)
	if exiting.Attached(root) {
		t.Error("exiting element survived the end of its transition")
	}
}

func TestRevivedKeyCancelsExit(t *testing.T) {
	root := scene.New("g")
	sched := transition.NewScheduler()
	render(root, sched, []month{{"a", 10}, {"b", 20}})
	sched.Flush()
	render(root, sched, []month{{"a", 10}})
	sched.Advance(100 * time.Millisecond)

	j := render(root, sched, []month{{"a", 10}, {"b", 30}})
	if len(j.Enter) != 0 {
		t.Errorf("len(Enter) = %d, want 0 (b revived)", len(j.Enter))
	}
	sched.Flush()
	if got := root.Count("rect.bar"); got != 2 {
		t.Errorf("element count = %d, want 2", got)
	}
	if got := root.ByKey("b").Num("height"); got != 30 {
		t.Errorf("height of b = %v, want 30", got)
	}
}

func TestRevenueProfitToggle(t *testing.T) {
	rows := []struct {
		Month           string
		Revenue, Profit float64
	}{
		{"January", 13432, 8342},
		{"February", 19342, 10342},
		{"March", 17443, 15423},
		{"April", 26342, 18432},
		{"May", 34213, 29434},
	}
	root := scene.New("g")
	sched := transition.NewScheduler()
	for _, metric := range []string{"revenue", "profit"} {
		data := make([]month, len(rows))
		for i, r := range rows {
			v := r.Revenue
			if metric == "profit" {
				v = r.Profit
			}
			data[i] = month{Name: r.Month, Revenue: v}
		}
		j := render(root, sched, data)
		sched.Flush()
		if metric == "profit" && (len(j.Enter) != 0 || len(j.Exit) != 0) {
			t.Errorf("toggle produced %d enters and %d exits, want none", len(j.Enter), len(j.Exit))
		}
	}
	if got := root.ByKey("May").Num("height"); got != 29434 {
		t.Errorf("May height = %v, want 29434", got)
	}
}

func ExampleDiff() {
	r := Diff([]string{"Jan", "Feb", "Mar"}, []string{"Feb", "Mar", "Apr"})
	fmt.Println(r.Enter, r.Update, r.Exit)
	// Output: [Apr] [Feb Mar] [Jan]
}
