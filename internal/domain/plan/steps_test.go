package plan

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/platform"
	"github.com/metacli/setup/internal/domain/sysintegration"
)

func seedPayload(f *plannerFixture) {
	f.fs.AddFile("/payload/metacli-gui", "gui binary")
	f.fs.AddFile("/payload/metacli", "cli binary")
}

func bothExecutables() detect.Components {
	return detect.NewComponents(detect.ComponentGui, detect.ComponentCli)
}

func TestCopyFilesStep_CopiesSelection(t *testing.T) {
	f := newPlannerFixture(t)
	seedPayload(f)

	step := f.planner.copyFilesStep(testInstallDir, bothExecutables(), false)
	require.NoError(t, step.Apply(context.Background()))

	assert.True(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli-gui")))
	assert.True(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli")))
}

func TestCopyFilesStep_SkipsUnselectedExecutable(t *testing.T) {
	f := newPlannerFixture(t)
	seedPayload(f)

	step := f.planner.copyFilesStep(testInstallDir, detect.NewComponents(detect.ComponentCli), false)
	require.NoError(t, step.Apply(context.Background()))

	assert.False(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli-gui")))
	assert.True(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli")))
}

func TestCopyFilesStep_IncludesExtraFiles(t *testing.T) {
	f := newPlannerFixture(t)
	seedPayload(f)
	f.man.ExtraFiles = []string{"LICENSE"}
	f.fs.AddFile("/payload/LICENSE", "MIT")

	step := f.planner.copyFilesStep(testInstallDir, bothExecutables(), false)
	require.NoError(t, step.Apply(context.Background()))

	assert.True(t, f.fs.Exists(filepath.Join(testInstallDir, "LICENSE")))
}

func TestCopyFilesStep_PartialFailureCleansUp(t *testing.T) {
	f := newPlannerFixture(t)
	seedPayload(f)
	f.fs.FailCopyTo(filepath.Join(testInstallDir, "metacli"), errors.New("disk full"))

	step := f.planner.copyFilesStep(testInstallDir, bothExecutables(), false)
	err := step.Apply(context.Background())
	require.Error(t, err)

	assert.False(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli-gui")),
		"files copied before the failure must be removed")
}

func TestCopyFilesStep_MissingPayloadFails(t *testing.T) {
	f := newPlannerFixture(t)
	// Payload directory is empty.

	step := f.planner.copyFilesStep(testInstallDir, bothExecutables(), false)
	require.Error(t, step.Apply(context.Background()))
}

func TestCopyFilesStep_OnlyMissingLeavesExistingAlone(t *testing.T) {
	f := newPlannerFixture(t)
	seedPayload(f)
	f.fs.AddFile(filepath.Join(testInstallDir, "metacli"), "locally patched")

	step := f.planner.copyFilesStep(testInstallDir, bothExecutables(), true)
	require.NoError(t, step.Apply(context.Background()))

	content, err := f.fs.ReadFile(filepath.Join(testInstallDir, "metacli"))
	require.NoError(t, err)
	assert.Equal(t, "locally patched", string(content))
	assert.True(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli-gui")))
}

func TestCopyFilesStep_UndoRemovesCopiedFiles(t *testing.T) {
	f := newPlannerFixture(t)
	seedPayload(f)

	step := f.planner.copyFilesStep(testInstallDir, bothExecutables(), false)
	require.NoError(t, step.Apply(context.Background()))
	require.NoError(t, step.Undo(context.Background()))

	assert.False(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli-gui")))
	assert.False(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli")))
}

func TestAddPathStep_SetsClaimAndIsIdempotent(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.addPathStep(testInstallDir)
	require.NoError(t, step.Apply(context.Background()))
	require.NoError(t, step.Apply(context.Background()), "re-running must be a no-op")

	in, err := f.integrator.IsInPath(testInstallDir)
	require.NoError(t, err)
	assert.True(t, in)
	assert.Equal(t, "true", f.store.SectionValues(sysintegration.SectionComponents)["PathEntry"])
}

func TestRemovePathStep_ClearsClaimAndSparesOthers(t *testing.T) {
	f := newPlannerFixture(t)
	require.NoError(t, f.integrator.AddToPath("/somewhere/else"))
	require.NoError(t, f.integrator.AddToPath(testInstallDir))

	step := f.planner.removePathStep(testInstallDir)
	require.NoError(t, step.Apply(context.Background()))
	require.NoError(t, step.Apply(context.Background()))

	in, err := f.integrator.IsInPath(testInstallDir)
	require.NoError(t, err)
	assert.False(t, in)

	other, err := f.integrator.IsInPath("/somewhere/else")
	require.NoError(t, err)
	assert.True(t, other, "unrelated PATH entries must survive")
	assert.Equal(t, "false", f.store.SectionValues(sysintegration.SectionComponents)["PathEntry"])
}

func TestCreateShortcutStep_TargetsGuiWhenPresent(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.createShortcutStep(detect.ComponentDesktopShortcut, testInstallDir, bothExecutables())
	require.NoError(t, step.Apply(context.Background()))

	content, err := f.fs.ReadFile(f.integrator.ShortcutPath(sysintegration.ShortcutDesktop))
	require.NoError(t, err)
	assert.Contains(t, string(content), "metacli-gui")
	assert.Equal(t, "true", f.store.SectionValues(sysintegration.SectionComponents)["DesktopShortcuts"])
}

func TestCreateShortcutStep_FallsBackToCli(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.createShortcutStep(detect.ComponentStartMenuShortcut, testInstallDir, detect.NewComponents(detect.ComponentCli))
	require.NoError(t, step.Apply(context.Background()))

	content, err := f.fs.ReadFile(f.integrator.ShortcutPath(sysintegration.ShortcutStartMenu))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Exec="+filepath.Join(testInstallDir, "metacli")+"\n")
}

func TestCreateShortcutStep_NoExecutable(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.createShortcutStep(detect.ComponentDesktopShortcut, testInstallDir, detect.NewComponents())
	require.Error(t, step.Apply(context.Background()))
}

func TestCreateShortcutStep_WriteFailureLeavesNoClaim(t *testing.T) {
	f := newPlannerFixture(t)
	path := f.integrator.ShortcutPath(sysintegration.ShortcutDesktop)
	f.fs.FailWriteTo(path, errors.New("disk full"))

	step := f.planner.createShortcutStep(detect.ComponentDesktopShortcut, testInstallDir, bothExecutables())
	require.Error(t, step.Apply(context.Background()))

	assert.False(t, f.fs.Exists(path))
	assert.Empty(t, f.store.SectionValues(sysintegration.SectionComponents)["DesktopShortcuts"])
}

func TestRemoveShortcutStep_AbsentIsNoOp(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.removeShortcutStep(detect.ComponentDesktopShortcut)
	require.NoError(t, step.Apply(context.Background()))
	require.NoError(t, step.Apply(context.Background()))
	assert.Equal(t, "false", f.store.SectionValues(sysintegration.SectionComponents)["DesktopShortcuts"])
}

func TestWriteRecordStep_WritesAllSections(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.writeRecordStep(testInstallDir, bothExecutables())
	require.NoError(t, step.Apply(context.Background()))

	install := f.store.SectionValues(sysintegration.SectionInstall)
	assert.Equal(t, testInstallDir, install[sysintegration.KeyInstallPath])
	assert.Equal(t, "1.2.3", install[sysintegration.KeyVersion])
	assert.NotEmpty(t, install[sysintegration.KeyInstallDate])

	components := f.store.SectionValues(sysintegration.SectionComponents)
	assert.Equal(t, "true", components["Gui"])
	assert.Equal(t, "true", components["Cli"])
	assert.Equal(t, "false", components["PathEntry"])

	uninstall := f.store.SectionValues(sysintegration.SectionUninstall)
	assert.Equal(t, "MetaCLI", uninstall[sysintegration.KeyDisplayName])
	assert.Equal(t, "1.2.3", uninstall[sysintegration.KeyDisplayVersion])
	assert.Equal(t, "MetaCLI Project", uninstall[sysintegration.KeyPublisher])
	assert.Equal(t, UninstallCommand, uninstall[sysintegration.KeyUninstallCommand])
}

func TestWriteRecordStep_UndoDeletesRecord(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.writeRecordStep(testInstallDir, bothExecutables())
	require.NoError(t, step.Apply(context.Background()))
	require.NoError(t, step.Undo(context.Background()))

	assert.False(t, f.store.HasSection(sysintegration.SectionInstall))
	assert.False(t, f.store.HasSection(sysintegration.SectionComponents))
	assert.False(t, f.store.HasSection(sysintegration.SectionUninstall))
}

func TestRemoveFilesStep_RemovesDirectory(t *testing.T) {
	f := newPlannerFixture(t)
	f.fs.AddFile(filepath.Join(testInstallDir, "metacli"), "bin")

	step := f.planner.removeFilesStep(testInstallDir, false)
	require.NoError(t, step.Apply(context.Background()))

	assert.False(t, f.fs.Exists(testInstallDir))
}

func TestRemoveFilesStep_KeepUserData(t *testing.T) {
	f := newPlannerFixture(t)
	f.fs.AddFile(filepath.Join(testInstallDir, "metacli"), "bin")
	userData := filepath.Join(testInstallDir, platform.UserDataDirName, "settings.json")
	f.fs.AddFile(userData, "{}")

	step := f.planner.removeFilesStep(testInstallDir, true)
	require.NoError(t, step.Apply(context.Background()))

	assert.False(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli")))
	assert.True(t, f.fs.Exists(userData), "the user data subfolder must survive")
}

func TestRemoveFilesStep_RemovalFailureSurfaces(t *testing.T) {
	f := newPlannerFixture(t)
	f.fs.AddFile(filepath.Join(testInstallDir, "metacli"), "bin")
	f.fs.FailRemoveAll(errors.New("permission denied"))

	step := f.planner.removeFilesStep(testInstallDir, false)
	require.Error(t, step.Apply(context.Background()))
	assert.True(t, f.fs.Exists(filepath.Join(testInstallDir, "metacli")))
}

func TestRemoveFilesStep_AbsentDirIsNoOp(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.removeFilesStep(testInstallDir, false)
	require.NoError(t, step.Apply(context.Background()))
}

func TestDeleteRecordStep_SparesEnvironmentSection(t *testing.T) {
	f := newPlannerFixture(t)
	require.NoError(t, f.integrator.AddToPath("/somewhere/else"))
	writeStep := f.planner.writeRecordStep(testInstallDir, bothExecutables())
	require.NoError(t, writeStep.Apply(context.Background()))

	step := f.planner.deleteRecordStep()
	require.NoError(t, step.Apply(context.Background()))
	require.NoError(t, step.Apply(context.Background()), "re-deleting is a no-op")

	assert.False(t, f.store.HasSection(sysintegration.SectionInstall))
	assert.False(t, f.store.HasSection(sysintegration.SectionUninstall))
	assert.True(t, f.store.HasSection(sysintegration.SectionEnvironment),
		"the PATH list may hold entries that are not ours")
}

func TestDirectoryStep_UndoOnlyRemovesEmptyDir(t *testing.T) {
	f := newPlannerFixture(t)

	step := f.planner.directoryStep(testInstallDir)
	require.NoError(t, step.Apply(context.Background()))
	f.fs.AddFile(filepath.Join(testInstallDir, platform.UserDataDirName, "settings.json"), "{}")

	require.NoError(t, step.Undo(context.Background()))
	assert.True(t, f.fs.Exists(testInstallDir), "a non-empty directory is left in place")
}
