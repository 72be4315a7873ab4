package xtc

import (
	"encoding/json"
	"fmt"
	"os"
)

type Configuration struct {
	MaxEvents     int      `json:"max_events"`
	Verbosity     int      `json:"verbosity"`
	FileIn        string   `json:"file_in"`
	FileOut       string   `json:"file_out"`
	GeometryFile  string   `json:"geometry_file"`
	RunNumber     int      `json:"run_number"`
	DetectorName  string   `json:"detector_name"`
	EpixTypeCodes []uint16 `json:"epix_type_codes"`
	Skip          int      `json:"skip"`
	NoDB          bool     `json:"no_db"`
	Host          string   `json:"host"`
	User          string   `json:"user"`
	Passwd        string   `json:"pass"`
	DBName        string   `json:"dbname"`
	NumWorkers    int      `json:"num_workers"`
	DoTilt        bool     `json:"do_tilt"`
	WriteData     bool     `json:"write_data"`
	WriteImages   bool     `json:"write_images"`
	Parallel      bool     `json:"parallel"`
	Compression   int      `json:"compression_level"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// LoadConfiguration reads a JSON configuration file. Missing keys keep the
// defaults set here before unmarshalling.
func LoadConfiguration(filename string) (Configuration, error) {
	config := Configuration{
		MaxEvents:     -1,
		NumWorkers:    4,
		DoTilt:        true,
		WriteData:     true,
		WriteImages:   true,
		Compression:   4,
		EpixTypeCodes: []uint16{117, 118, 6193},
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}
	if err := json.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error parsing configuration %s: %w", filename, err)
	}
	return config, nil
}
