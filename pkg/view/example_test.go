package view_test

import (
	"fmt"

	"github.com/matzehuels/vizlab/pkg/view"
)

func ExampleDecode() {
	msg, err := view.Decode([]byte(`{"type": "select", "control": "coin", "value": "bitcoin"}`))
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s %+v\n", msg.Type(), msg)
	// Output: select {Control:coin Value:bitcoin}
}

func ExampleReduce() {
	s, _ := view.Reduce(view.State{}, view.SetRange{Min: 2010, Max: 1990})
	fmt.Println(s.Range.Min, s.Range.Max, s.Range.Set)
	// Output: 1990 2010 true
}
