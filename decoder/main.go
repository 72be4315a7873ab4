package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	xtc "github.com/lcls-exp/xtcreader_go/pkg"
)

var dbConn *sqlx.DB
var configuration xtc.Configuration
var registry *xtc.TypeRegistry
var assembler *xtc.Assembler

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = xtc.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	xtc.SetConfiguration(configuration)
	xtc.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if !configuration.NoDB {
		dbConn, err = xtc.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connecting to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()
	}

	geometry, err := xtc.LoadGeometry(dbConn)
	if err != nil {
		message := fmt.Errorf("Error loading geometry: %w", err)
		logger.Error(message.Error())
		return
	}
	if !configuration.DoTilt {
		for i := range geometry.Panels {
			geometry.Panels[i].TiltZ = 0
			geometry.Panels[i].TiltY = 0
			geometry.Panels[i].TiltX = 0
		}
	}
	assembler, err = xtc.NewAssembler(geometry, xtc.Epix10ka2MPanelShape())
	if err != nil {
		message := fmt.Errorf("Error building assembler: %w", err)
		logger.Error(message.Error())
		return
	}

	registry = xtc.NewTypeRegistry()
	for _, code := range configuration.EpixTypeCodes {
		registry.Register(code, xtc.Epix10ka2MInterpreter())
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	evtCount, err := xtc.CountEvents(file)
	if err != nil {
		message := fmt.Errorf("Error counting events: %w", err)
		logger.Error(message.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d", evtCount)
		logger.Info(message, "main")
	}

	start := time.Now()
	writer := xtc.NewWriter(configuration.FileOut)

	var processed int
	if configuration.Parallel {
		processed = runParallel(file, writer)
	} else {
		processed = runSerial(file, writer)
	}

	if err := writer.Close(); err != nil {
		message := fmt.Errorf("error closing writer: %w", err)
		logger.Error(message.Error())
	}

	duration := time.Since(start)
	fmt.Println("Total events processed: ", processed)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

func runSerial(file *os.File, writer *xtc.Writer) int {
	fileReader := NewFileReader(file)
	processed := 0
	for {
		dgram, payload, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		event := decodeEvent(dgram, payload, fileReader.EvtCount)
		xtc.ProcessDecodedEvent(event, configuration, writer)
		processed++
	}
	return processed
}

// decodeEvent walks one event's containers, extracts the detector frames
// and assembles the image. A panic in the decoding of one event discards
// that event only.
func decodeEvent(dgram xtc.Datagram, payload []byte, eventID int) (event xtc.EventType) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("decoder recovered from panic on event %d: %v", eventID, r)
			logger.Error(errMessage.Error())
			message := fmt.Sprintf("discarding event %d", eventID)
			logger.Error(message)
			event = xtc.EventType{EventID: eventID, Error: true}
		}
	}()

	event = xtc.EventType{
		RunNumber: configuration.RunNumber,
		EventID:   eventID,
		Timestamp: dgram.Clock.AsDouble(),
		Fiducials: dgram.Stamp.Fiducials(),
		Damage:    dgram.Xtc.Damage,
	}

	err := xtc.WalkXtc(payload, registry, func(node xtc.XtcNode) bool {
		if registry.IsComposite(node.Header.Contains.ID()) {
			return true
		}
		value, err := registry.Interpret(node.Header, node.Payload)
		if err != nil {
			if VerbosityLevel > 2 {
				message := fmt.Sprintf("Event %d: skipping container %s: %v",
					eventID, registry.TypeName(node.Header.Contains.ID()), err)
				logger.Info(message, "decoder")
			}
			return true
		}
		if array, ok := value.(*xtc.Epix10ka2MArray); ok {
			event.Detector = array
			return false
		}
		return true
	})
	if err != nil {
		message := fmt.Errorf("event %d walk abandoned: %w", eventID, err)
		logger.Error(message.Error())
		event.Error = true
		return event
	}

	if event.Detector != nil {
		image, err := assembler.AssembleEpix(event.Detector)
		if err != nil {
			message := fmt.Errorf("event %d assembly failed: %w", eventID, err)
			logger.Error(message.Error())
			event.Error = true
			return event
		}
		event.Image = image
	}
	return event
}

func printConfiguration(config xtc.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Input file: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Output file: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Geometry file: %s", config.GeometryFile), "config")
	logger.Info(fmt.Sprintf("Detector: %s", config.DetectorName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Epix type codes: %v", config.EpixTypeCodes), "config")
}
