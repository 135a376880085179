package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/msos-dev/ipcgen/internal/testutil"
)

func writeCache(t *testing.T, dir, target string) {
	t.Helper()
	cache := "CMAKE_BUILD_TYPE:STRING=Debug\nMSOS_TARGET:STRING=" + target + "\n"
	testutil.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeCache.txt"), []byte(cache), 0o644))
}

func TestCleanOnTargetChange(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	testutil.NoError(t, os.MkdirAll(dir, 0o755))
	writeCache(t, dir, "stm32f207zgt6")

	cleanOnTargetChange(dir, "stm32f407zgt6")

	_, err := os.Stat(dir)
	testutil.True(t, os.IsNotExist(err), "build dir should be removed on target change")
}

func TestCleanOnTargetChangeSameTarget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	testutil.NoError(t, os.MkdirAll(dir, 0o755))
	writeCache(t, dir, "stm32f407zgt6")

	cleanOnTargetChange(dir, "stm32f407zgt6")

	_, err := os.Stat(dir)
	testutil.NoError(t, err, "build dir should survive a matching target")
}

func TestCleanOnTargetChangeNoCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	testutil.NoError(t, os.MkdirAll(dir, 0o755))

	cleanOnTargetChange(dir, "stm32f407zgt6")

	_, err := os.Stat(dir)
	testutil.NoError(t, err, "missing cache must not trigger a clean")
}

func TestJLinkScript(t *testing.T) {
	got := jlinkScript("build/app/threads/threads.bin", "0x08000000")
	testutil.Equal(t, "loadbin build/app/threads/threads.bin, 0x08000000\nr\ng\nq\n", got)
}
