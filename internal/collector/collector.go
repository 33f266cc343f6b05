// Package collector loads tool envelopes from a run's checkpoint
// directory so downstream stages can re-run without re-invoking tools.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
	"github.com/vulnpipe/vulnpipe/internal/validator"
)

// Config holds configuration for the collector
type Config struct {
	MaxConcurrency int
	Verbose        bool
	Timeout        time.Duration
}

// Collector reads checkpointed envelopes from a run directory
type Collector struct {
	config    Config
	validator *validator.Validator
}

// New creates a new collector with the given configuration
func New(config Config) *Collector {
	// Set defaults
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	return &Collector{
		config:    config,
		validator: validator.New(),
	}
}

// CollectRun reads all tool envelopes checkpointed under a run
// directory. Envelopes that fail to load or validate are skipped; the
// call fails only when every file fails, so one corrupt checkpoint
// cannot sink a re-run.
func (c *Collector) CollectRun(runDir string) ([]models.Envelope, error) {
	dir := storage.GeneratedToolsDir(runDir)

	files, err := c.findEnvelopeFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to find envelope files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no tool envelopes found in: %s", dir)
	}

	if c.config.Verbose {
		fmt.Printf("Found %d envelope file(s) to process\n", len(files))
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	return c.collectFiles(ctx, files)
}

// findEnvelopeFiles lists the JSON checkpoints in the tools directory.
func (c *Collector) findEnvelopeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// collectFiles loads files concurrently using a worker pool
func (c *Collector) collectFiles(ctx context.Context, files []string) ([]models.Envelope, error) {
	fileCh := make(chan string, len(files))
	resultCh := make(chan *collectResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < c.config.MaxConcurrency; i++ {
		wg.Add(1)
		go c.worker(ctx, &wg, fileCh, resultCh)
	}

	go func() {
		for _, file := range files {
			select {
			case fileCh <- file:
			case <-ctx.Done():
			}
		}
		close(fileCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	byFile := make(map[string]models.Envelope)
	var errors []error

	for result := range resultCh {
		if result.err != nil {
			errors = append(errors, result.err)
			if c.config.Verbose {
				fmt.Printf("Error processing %s: %v\n", result.file, result.err)
			}
			continue
		}
		byFile[result.file] = *result.envelope
		if c.config.Verbose {
			fmt.Printf("✓ Collected: %s (%s)\n", result.envelope.Meta.Tool, filepath.Base(result.file))
		}
	}

	// Return partial results even if some files failed
	if len(errors) > 0 && len(byFile) == 0 {
		return nil, fmt.Errorf("all envelope files failed to load (%d errors)", len(errors))
	}
	if len(errors) > 0 && c.config.Verbose {
		fmt.Printf("Warning: %d envelope file(s) failed to load\n", len(errors))
	}

	// Deterministic order regardless of worker scheduling.
	var envelopes []models.Envelope
	for _, file := range files {
		if env, ok := byFile[file]; ok {
			envelopes = append(envelopes, env)
		}
	}
	return envelopes, nil
}

// collectResult holds the result of loading a single envelope file
type collectResult struct {
	file     string
	envelope *models.Envelope
	err      error
}

// worker loads files from the work channel
func (c *Collector) worker(ctx context.Context, wg *sync.WaitGroup, fileCh <-chan string, resultCh chan<- *collectResult) {
	defer wg.Done()

	for {
		select {
		case file, ok := <-fileCh:
			if !ok {
				return
			}

			env, err := c.loadFile(file)
			resultCh <- &collectResult{
				file:     file,
				envelope: env,
				err:      err,
			}

		case <-ctx.Done():
			return
		}
	}
}

// loadFile reads and validates a single checkpointed envelope. The tool
// name falls back to the file stem when the meta block omits it.
func (c *Collector) loadFile(filePath string) (*models.Envelope, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}

	if env.Meta.Tool == "" {
		stem := strings.TrimSuffix(filepath.Base(filePath), ".json")
		env.Meta.Tool = models.ToolType(stem)
	}
	if env.OutputFile == "" {
		env.OutputFile = filePath
	}

	if err := c.validator.ValidateEnvelope(&env); err != nil {
		return nil, err
	}

	return &env, nil
}
