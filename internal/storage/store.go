package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/flocksim/internal/experiment"
	"github.com/san-kum/flocksim/internal/flock"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	frameFile    = "frame.bin"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Boids     int                `json:"boids"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Frames    int                `json:"frames"`
	Backend   string             `json:"backend"`
	Bounds    BoundsMetadata     `json:"bounds"`
	Params    flock.Params       `json:"params"`
	Fields    []flock.Field      `json:"fields,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

type BoundsMetadata struct {
	Center [3]float32 `json:"center"`
	Radius float32    `json:"radius"`
}

// Save writes one run directory and returns its id.
func (s *Store) Save(cfg experiment.Config, result *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("flock_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	fields, err := flock.BuildFields(cfg.Fields)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Boids:     len(result.Final.Boids),
		Seed:      cfg.Flock.Seed,
		Dt:        float64(cfg.Dt),
		Frames:    result.Final.Index,
		Backend:   result.Backend,
		Bounds: BoundsMetadata{
			Center: cfg.Flock.Bounds.Center,
			Radius: cfg.Flock.Bounds.Radius,
		},
		Params:  cfg.Flock.Params,
		Fields:  fields,
		Metrics: result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writeFrame(filepath.Join(runDir, frameFile), result.Final.Boids); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, result *experiment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"time"}, result.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range result.Columns {
			col := result.Series[name]
			v := 0.0
			if i < len(col) {
				v = col[i]
			}
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// writeFrame stores boids as packed little-endian records of BoidStride bytes.
func writeFrame(path string, boids []flock.Boid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := binary.Write(bw, binary.LittleEndian, boids); err != nil {
		return err
	}
	return bw.Flush()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries returns the per-frame columns keyed by name, plus the time axis
// and the column order.
func (s *Store) LoadSeries(runID string) (map[string][]float64, []float64, []string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return map[string][]float64{}, []float64{}, nil, nil
	}

	columns := records[0][1:]
	series := make(map[string][]float64, len(columns))
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		for j, name := range columns {
			v := 0.0
			if j+1 < len(record) {
				v, _ = strconv.ParseFloat(record[j+1], 64)
			}
			series[name] = append(series[name], v)
		}
	}

	return series, times, columns, nil
}

// LoadFrame reads the final boid snapshot of a run.
func (s *Store) LoadFrame(runID string) ([]flock.Boid, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, frameFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size()%flock.BoidStride != 0 {
		return nil, fmt.Errorf("%s: size %d is not a multiple of %d", frameFile, info.Size(), flock.BoidStride)
	}

	boids := make([]flock.Boid, info.Size()/flock.BoidStride)
	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, boids); err != nil && err != io.EOF {
		return nil, err
	}
	return boids, nil
}
