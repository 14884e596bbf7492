package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/a100/core/model"
)

func problem() model.Problem {
	return model.Problem{
		Resources: []model.Resource{{Name: "cleaners", Capacity: 4}, {Name: "tractors", Capacity: 1}},
		Horizon:   model.Horizon{Slots: 4},
		Zones: []model.Zone{
			{Priority: 3, Modes: []model.Mode{{Duration: 2, Demands: []int{2, 0}}, {Duration: 1, Demands: []int{1, 1}}}},
			{Priority: 1, Modes: []model.Mode{{Duration: 3, Demands: []int{2, 0}}}},
			{Priority: 5},
		},
	}
}

func TestComputeWorkload(t *testing.T) {
	p := problem()
	items := []model.Item{{Zone: 0, Start: 2, Mode: 0}, {Zone: 1, Start: 1, Mode: 0}}
	w := ComputeWorkload(p, items)
	assert.Equal(t, 1, w.First)
	assert.Equal(t, [][]int{{2, 0}, {4, 0}, {4, 0}}, w.Usage)
	assert.Equal(t, []string{"11:30 - 12:00", "12:00 - 12:30", "12:30 - 13:00"}, w.Rows)
	assert.Equal(t, []string{"cleaners", "tractors"}, w.Names)
	assert.Equal(t, []float64{2, 4, 4}, w.Column(0))

	empty := ComputeWorkload(p, nil)
	assert.Equal(t, 4, empty.First)
	assert.Empty(t, empty.Usage)
}

func TestComputeUtilization(t *testing.T) {
	p := problem()
	items := []model.Item{{Zone: 0, Start: 2, Mode: 0}, {Zone: 1, Start: 1, Mode: 0}}
	u := ComputeUtilization(p, items)
	require.Len(t, u, 2)
	assert.Equal(t, "cleaners", u[0].Resource)
	assert.InDelta(t, 4, u[0].Peak, 1e-9)
	assert.InDelta(t, 2.5, u[0].Mean, 1e-9)
	assert.InDelta(t, 10.0/16.0, u[0].Ratio, 1e-9)
	assert.Greater(t, u[0].StdDev, 0.0)
	assert.Zero(t, u[1].Peak)
	assert.Zero(t, u[1].Ratio)

	p.Horizon.Slots = 1
	one := ComputeUtilization(p, []model.Item{{Zone: 0, Start: 0, Mode: 1}})
	assert.False(t, math.IsNaN(one[0].StdDev))
	assert.InDelta(t, 1, one[1].Ratio, 1e-9)
}

func TestObjective(t *testing.T) {
	p := problem()
	items := []model.Item{{Zone: 0, Start: 2, Mode: 0}, {Zone: 1, Start: 1, Mode: 0}}
	// 3*4 + 1*4
	assert.Equal(t, int64(16), Objective(p, items))
	assert.Zero(t, Objective(p, nil))
}

func TestVerify(t *testing.T) {
	p := problem()
	ok := []model.Item{{Zone: 0, Start: 2, Mode: 0}, {Zone: 1, Start: 1, Mode: 0}}
	assert.NoError(t, Verify(p, ok))
	assert.NoError(t, Verify(p, []model.Item{}))

	bad := map[string][]model.Item{
		"unknown zone":   {{Zone: 7}},
		"duplicate zone": {{Zone: 0, Start: 0, Mode: 1}, {Zone: 0, Start: 2, Mode: 1}},
		"unknown mode":   {{Zone: 2, Start: 0, Mode: 0}},
		"past horizon":   {{Zone: 1, Start: 2, Mode: 0}},
	}
	for name, items := range bad {
		if err := Verify(p, items); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	p.Resources[0].Capacity = 3
	err := Verify(p, []model.Item{{Zone: 0, Start: 0, Mode: 0}, {Zone: 1, Start: 0, Mode: 0}})
	assert.ErrorContains(t, err, "cleaners over capacity at slot 0")
}

func TestEntries(t *testing.T) {
	p := problem()
	p.Zones[1].Name = "north"
	items := []model.Item{{Zone: 0, Start: 2, Mode: 1}, {Zone: 1, Start: 0, Mode: 0}}
	got := Entries(p, items)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{
		Zone: 0, Name: "Zone 1", Mode: 1, Start: 2, End: 3,
		StartLabel: "12:00", EndLabel: "12:30", Demands: []int{1, 1},
	}, got[0])
	assert.Equal(t, "north", got[1].Name)
	assert.Equal(t, "12:30", got[1].EndLabel)
	assert.Empty(t, Entries(p, nil))
}
