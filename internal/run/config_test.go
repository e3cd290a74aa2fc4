package run

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickertag/pkg/colorutil"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := New()
	cfg.Mode = ModeAutomatic
	cfg.ReferenceDir = t.TempDir()
	cfg.TargetDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.ReferenceTag = "_2018_"
	cfg.TargetTag = "_2020_"
	cfg.OutputTag = "_2018-2020_"
	cfg.Classes = []ClassDef{
		{Name: "demolished", Color: "red"},
		{Name: "new building", Color: "green"},
	}
	return cfg
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(t.TempDir(), "run.fltag")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Mode, loaded.Mode)
	assert.Equal(t, cfg.ReferenceDir, loaded.ReferenceDir)
	assert.Equal(t, cfg.TargetTag, loaded.TargetTag)
	assert.Equal(t, cfg.Classes, loaded.Classes)
	assert.False(t, loaded.Modified.Before(loaded.Created))
}

func TestConfig_LoadFailures(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.fltag"))
	require.Error(t, err)
}

func TestConfig_ClassSetResolvesPaletteColors(t *testing.T) {
	cfg := validConfig(t)
	classes, err := cfg.ClassSet()
	require.NoError(t, err)

	col, ok := classes.Color("demolished")
	require.True(t, ok)
	want, _ := colorutil.Lookup("red")
	assert.Equal(t, want, col)
}

func TestConfig_ClassSetRejectsUnknownColor(t *testing.T) {
	cfg := validConfig(t)
	cfg.Classes = []ClassDef{{Name: "demolished", Color: "chartreuse"}}
	_, err := cfg.ClassSet()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig(t).Validate())

	noClasses := validConfig(t)
	noClasses.Classes = nil
	assert.Error(t, noClasses.Validate())

	badMode := validConfig(t)
	badMode.Mode = Mode("hybrid")
	assert.Error(t, badMode.Validate())

	autoMissingTag := validConfig(t)
	autoMissingTag.ReferenceTag = ""
	assert.Error(t, autoMissingTag.Validate())

	manual := validConfig(t)
	manual.Mode = ModeManual
	manual.ReferenceTag = "" // tags are optional in manual mode
	require.NoError(t, manual.Validate())

	manualNoOut := validConfig(t)
	manualNoOut.Mode = ModeManual
	manualNoOut.OutputDir = ""
	assert.Error(t, manualNoOut.Validate())
}
