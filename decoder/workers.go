package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	xtc "github.com/lcls-exp/xtcreader_go/pkg"
)

type WorkerData struct {
	Dgram   xtc.Datagram
	Payload []byte
	EventID int
}

func worker(id int, wg *sync.WaitGroup, jobs <-chan WorkerData, results chan<- xtc.EventType) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("Worker %d recovered from panic: %v", id, r)
			logger.Error(message)
			results <- xtc.EventType{Error: true}
		}
	}()

	for job := range jobs {
		results <- decodeEvent(job.Dgram, job.Payload, job.EventID)
	}
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- WorkerData) {
	for {
		dgram, payload, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		jobs <- WorkerData{Dgram: dgram, Payload: payload, EventID: fileReader.EvtCount}
	}
	close(jobs)
}

// processWorkerResults drains the results channel while the workers are
// still decoding, writing each event as it arrives. Events reach the
// writer in completion order, not event order; the event table carries the
// event number. Only one event per worker is in flight, so memory stays
// bounded regardless of the run length.
func processWorkerResults(results <-chan xtc.EventType, writer *xtc.Writer) int {
	evtsProcessed := 0
	for event := range results {
		xtc.ProcessDecodedEvent(event, configuration, writer)
		evtsProcessed++
	}
	return evtsProcessed
}

// runParallel reads events sequentially and fans the decode and assembly
// work out to NumWorkers goroutines. The assembler and registry are shared
// read-only; this goroutine is the single writer.
func runParallel(file *os.File, writer *xtc.Writer) int {
	jobs := make(chan WorkerData, configuration.NumWorkers)
	results := make(chan xtc.EventType, configuration.NumWorkers)

	var wg sync.WaitGroup
	for w := 0; w < configuration.NumWorkers; w++ {
		wg.Add(1)
		go worker(w, &wg, jobs, results)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go sendEventsToWorkers(NewFileReader(file), jobs)

	return processWorkerResults(results, writer)
}
