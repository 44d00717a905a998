package loader_test

import (
	"errors"
	"testing"

	"marketplace/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	mgr := loader.NewManager(zap.NewNop())
	on := &stubFeature{name: "market", enabled: true}
	off := &stubFeature{name: "catalog", enabled: false}
	mgr.Register(on)
	mgr.Register(off)

	assert.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, mgr.Features(), 2)
}

func TestManager_LoadAll_Error(t *testing.T) {
	mgr := loader.NewManager(nil)
	mgr.Register(&stubFeature{name: "market", enabled: true, err: errors.New("boom")})

	err := mgr.LoadAll(fiber.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "market")
}

func TestManager_LoadAll_Duplicate(t *testing.T) {
	mgr := loader.NewManager(nil)
	mgr.Register(&stubFeature{name: "market", enabled: true})
	mgr.Register(&stubFeature{name: "market", enabled: true})

	assert.Error(t, mgr.LoadAll(fiber.New()))
}
