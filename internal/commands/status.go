package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/remedy/internal/output"
	"github.com/dotcommander/remedy/internal/recovery"
)

type statusResponse struct {
	ProcessResidentMemory uint64  `json:"process_resident_memory"`
	TotalSystemMemory     uint64  `json:"total_system_memory"`
	UsageFraction         float64 `json:"usage_fraction"`
	WithinSafeThreshold   bool    `json:"within_safe_threshold"`
	// LoadAverage1m is only meaningful when LoadAverageAvailable is set;
	// a zero load is a real reading, not a failed probe.
	LoadAverage1m        float64 `json:"load_average_1m"`
	LoadAverageAvailable bool    `json:"load_average_available"`
}

func buildStatus(monitor *recovery.ResourceMonitor, load recovery.LoadProber) (statusResponse, error) {
	snap, err := monitor.Snapshot()
	if err != nil {
		return statusResponse{}, err
	}
	frac, err := monitor.UsageFraction()
	if err != nil {
		return statusResponse{}, err
	}

	r := statusResponse{
		ProcessResidentMemory: snap.ProcessResidentMemory,
		TotalSystemMemory:     snap.TotalSystemMemory,
		UsageFraction:         frac,
		WithinSafeThreshold:   monitor.WithinSafeThreshold(),
	}
	// Load average is advisory; a probe failure leaves it marked unavailable.
	if v, loadErr := load.OneMinute(); loadErr == nil {
		r.LoadAverage1m = v
		r.LoadAverageAvailable = true
	}
	return r, nil
}

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current resource snapshot and safety verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildStatus(recovery.NewResourceMonitor(), recovery.ProcLoadAvg{})
			if err != nil {
				return cmdErr(err)
			}
			return output.PrintSuccess(r)
		},
	}
}
