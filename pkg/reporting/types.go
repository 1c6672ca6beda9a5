package reporting

import (
	"time"

	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
)

// RunStatus represents the terminal status of a simulation run.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusStopped   RunStatus = "stopped"
	StatusFailed    RunStatus = "failed"
)

// RunSummary is the complete output of one TesterSystem/TesterScenario
// invocation: the per-year outcome probabilities, the per-kind breakdown,
// and enough metadata to reconstruct the `<prefix>.S.<faultKind>` file.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	Status  RunStatus `json:"status"`
	Message string    `json:"message,omitempty"`

	ECCScheme      string   `json:"ecc_scheme"`
	OutputPrefix   string   `json:"output_prefix"`
	FaultKindNames []string `json:"fault_kind_names"`
	FaultCount     int      `json:"fault_count"`
	RunCnt         int      `json:"run_cnt"`

	RetireProbability []float64 `json:"retire_probability"`
	DUEProbability    []float64 `json:"due_probability"`
	SDCProbability    []float64 `json:"sdc_probability"`

	FaultStats []domaingroup.FaultStats `json:"fault_stats"`

	Errors []string `json:"errors,omitempty"`
}

// OutputFileName returns the <prefix>.S.<faultKind>[.<opts>] base name this
// summary should be written under.
func (r *RunSummary) OutputFileName(opts ...string) string {
	name := r.OutputPrefix + ".S." + faultKindLabel(r.FaultKindNames)
	for _, o := range opts {
		name += "." + o
	}
	return name
}

func faultKindLabel(names []string) string {
	if len(names) == 0 {
		return "NONE"
	}
	return names[0]
}
