package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/worldblend/config"
)

// WeightRow is one source's blend record for one frame, flattened for CSV.
type WeightRow struct {
	Frame        uint64  `csv:"frame"`
	SourceID     uint32  `csv:"source"`
	Dist         float64 `csv:"dist"`
	DistanceBias float64 `csv:"distance_bias"`
	Scalar       float64 `csv:"scalar"`
	Weight       float64 `csv:"weight"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	weightsFile *os.File
	statsFile   *os.File

	// Track if headers have been written
	weightsHeaderWritten bool
	statsHeaderWritten   bool
}

// NewOutputManager creates an output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled); a nil manager
// is safe to call.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	weightsPath := filepath.Join(dir, "weights.csv")
	f, err := os.Create(weightsPath)
	if err != nil {
		return nil, fmt.Errorf("creating weights.csv: %w", err)
	}
	om.weightsFile = f

	statsPath := filepath.Join(dir, "stats.csv")
	f, err = os.Create(statsPath)
	if err != nil {
		om.weightsFile.Close()
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteWeights writes one frame's weight rows to weights.csv.
func (om *OutputManager) WriteWeights(rows []WeightRow) error {
	if om == nil || len(rows) == 0 {
		return nil
	}

	if !om.weightsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(rows, om.weightsFile); err != nil {
			return fmt.Errorf("writing weights: %w", err)
		}
		om.weightsHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(rows, om.weightsFile); err != nil {
			return fmt.Errorf("writing weights: %w", err)
		}
	}

	return nil
}

// WriteStats writes a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	return nil
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	if err := om.weightsFile.Close(); err != nil {
		firstErr = err
	}
	if err := om.statsFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
