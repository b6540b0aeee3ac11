package store

import (
	"strings"
	"testing"
)

func sampleRun() (RunMetadata, []Sample) {
	meta := RunMetadata{
		Scenario: "two_body_circular",
		G:        6.6743e-11,
		Dt:       3600,
		Duration: 86400,
		Bodies:   []string{"sat", "earth"},
		Metrics:  map[string]float64{"energy_drift": 1.5e-7},
	}
	samples := []Sample{
		{Time: 0, Body: "earth", X: 0, Y: 0, Z: 0},
		{Time: 0, Body: "sat", X: 1.5e11, Y: 0, Z: 0},
		{Time: 3600, Body: "sat", X: 1.4999e11, Y: 1.85e5, Z: 0},
	}
	return meta, samples
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	meta, samples := sampleRun()
	runID, err := st.Save(meta, samples)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "two_body_circular_") {
		t.Errorf("run id = %q", runID)
	}

	back, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if back.Scenario != meta.Scenario || back.Dt != meta.Dt || back.Duration != meta.Duration {
		t.Errorf("metadata mismatch: %+v", back)
	}
	if back.Metrics["energy_drift"] != 1.5e-7 {
		t.Errorf("metrics lost: %v", back.Metrics)
	}
	// Body names come back sorted.
	if back.Bodies[0] != "earth" || back.Bodies[1] != "sat" {
		t.Errorf("bodies = %v", back.Bodies)
	}

	got, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(samples) {
		t.Fatalf("%d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %+v, want %+v", i, got[i], samples[i])
		}
	}
}

func TestListFindsRuns(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	meta, samples := sampleRun()
	if _, err := st.Save(meta, samples); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("%d runs, want 1", len(runs))
	}
	if runs[0].Scenario != "two_body_circular" {
		t.Errorf("scenario = %q", runs[0].Scenario)
	}
}

func TestListEmptyBaseDir(t *testing.T) {
	st := New(t.TempDir() + "/never-created")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("%d runs in missing dir", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("ghost_1"); err == nil {
		t.Error("loading a missing run succeeded")
	}
}
