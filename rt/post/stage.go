package post

import (
	"errors"
	"fmt"
)

var ErrUnknownParameter = errors.New("post: unknown stage parameter")

// Stage names, in pipeline order.
const (
	ToneMapping         = "tonemapping"
	Bloom               = "bloom"
	AntiAlias           = "antialias"
	Sharpen             = "sharpen"
	Grain               = "grain"
	ChromaticAberration = "chromatic"
	Vignette            = "vignette"
)

// Stage is a long-lived post-processing pass. Its parameter set is fixed when it is
// built; per-frame work is limited to overwriting values in place.
type Stage struct {
	Name   string
	params []string
	values []float32
	dirty  bool
}

func newStage(name string, params ...string) *Stage {
	return &Stage{
		Name:   name,
		params: params,
		values: make([]float32, len(params)),
	}
}

func (s *Stage) index(name string) int {
	for i, p := range s.params {
		if p == name {
			return i
		}
	}
	return -1
}

// SetParameter overwrites one parameter. Unknown names are rejected, never added.
func (s *Stage) SetParameter(name string, v float32) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s.%s", ErrUnknownParameter, s.Name, name)
	}
	s.set(i, v)
	return nil
}

func (s *Stage) set(i int, v float32) {
	if s.values[i] != v {
		s.values[i] = v
		s.dirty = true
	}
}

func (s *Stage) Parameter(name string) (float32, bool) {
	i := s.index(name)
	if i < 0 {
		return 0, false
	}
	return s.values[i], true
}

// Parameters lists parameter names in storage order.
func (s *Stage) Parameters() []string { return s.params }

// Values exposes the parameter storage in the order of Parameters. Callers must not retain it.
func (s *Stage) Values() []float32 { return s.values }

// Active reports whether the stage currently contributes to the image. Inactive
// stages stay in the pipeline with a zero strength.
func (s *Stage) Active() bool {
	if len(s.values) == 0 {
		return false
	}
	return s.values[0] != 0
}

// TakeDirty reports whether any value changed since the last call and clears the flag.
func (s *Stage) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}
