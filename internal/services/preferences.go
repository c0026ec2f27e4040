package services

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"examphoto/internal/common"
	"examphoto/internal/dimensions"
)

// FallbackDimensions is used when no valid defaults file exists.
var FallbackDimensions = dimensions.Spec{Width: 276, Height: 354}

// DefaultsService holds the default output dimensions, backed by a two-line
// text file (width, then height).
type DefaultsService struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current dimensions.Spec
}

// NewDefaultsService creates a defaults store for path. Call Load before use;
// until then Get returns FallbackDimensions.
func NewDefaultsService(path string, logger *slog.Logger) *DefaultsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultsService{
		path:    path,
		logger:  logger,
		current: FallbackDimensions,
	}
}

// Load reads the defaults file. A missing, short or malformed file leaves the
// fallback in place.
func (s *DefaultsService) Load() dimensions.Spec {
	spec, err := readDefaultsFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("No defaults file, using fallback", "path", s.path, "defaults", FallbackDimensions.String())
		spec = FallbackDimensions
	case err != nil:
		s.logger.Warn("Ignoring malformed defaults file", "path", s.path, "error", err)
		spec = FallbackDimensions
	}

	s.mu.Lock()
	s.current = spec
	s.mu.Unlock()
	return spec
}

// Get returns the current default dimensions
func (s *DefaultsService) Get() dimensions.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates d, writes it to disk and then makes it current.
func (s *DefaultsService) Save(d dimensions.Spec) error {
	if err := d.Validate(); err != nil {
		return common.NewPreferencesError("save", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := []byte(fmt.Sprintf("%d\n%d\n", d.Width, d.Height))
	if err := common.WriteFileAtomic(s.path, data, common.DefaultFileMode); err != nil {
		return common.NewPreferencesError("save", err)
	}

	s.current = d
	s.logger.Info("Default dimensions saved", "defaults", d.String(), "path", s.path)
	return nil
}

// SaveFromInput resolves in against the current defaults and saves the result.
func (s *DefaultsService) SaveFromInput(in dimensions.Input, dpi int) (dimensions.Spec, error) {
	spec, err := dimensions.Resolve(in, dpi, s.Get())
	if err != nil {
		return dimensions.Spec{}, err
	}
	if err := s.Save(spec); err != nil {
		return dimensions.Spec{}, err
	}
	return spec, nil
}

func readDefaultsFile(path string) (dimensions.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dimensions.Spec{}, err
	}

	var values []int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() && len(values) < 2 {
		line := strings.TrimSpace(scanner.Text())
		v, err := strconv.Atoi(line)
		if err != nil {
			return dimensions.Spec{}, fmt.Errorf("line %d: %q is not an integer", len(values)+1, line)
		}
		values = append(values, v)
	}
	if len(values) < 2 {
		return dimensions.Spec{}, fmt.Errorf("expected 2 lines, found %d", len(values))
	}

	spec := dimensions.Spec{Width: values[0], Height: values[1]}
	if err := spec.Validate(); err != nil {
		return dimensions.Spec{}, err
	}
	return spec, nil
}
