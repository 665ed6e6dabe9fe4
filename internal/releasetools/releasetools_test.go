package releasetools

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/edify"
	"github.com/conn-castle/ota-layer/internal/logging"
	"github.com/conn-castle/ota-layer/internal/otapackage"
	"github.com/conn-castle/ota-layer/internal/partition"
)

type fakeBuild struct {
	files  map[string][]byte
	images map[partition.Name]*partition.Image
	reads  []string
}

func newFakeBuild(files map[string]string, images ...string) *fakeBuild {
	b := &fakeBuild{files: map[string][]byte{}, images: map[partition.Name]*partition.Image{}}
	for name, content := range files {
		b.files[name] = []byte(content)
	}
	for _, name := range images {
		b.images[partition.Name(name)] = &partition.Image{
			Partition: partition.Name(name),
			Path:      "/tmp/IMAGES/" + name + ".img",
			Size:      1,
		}
	}
	return b
}

func (b *fakeBuild) Contains(name string) bool {
	_, ok := b.files[name]
	return ok
}

func (b *fakeBuild) Read(name string) ([]byte, error) {
	b.reads = append(b.reads, name)
	data, ok := b.files[name]
	if !ok {
		return nil, errors.New("missing " + name)
	}
	return data, nil
}

func (b *fakeBuild) HasImage(name partition.Name) bool {
	_, ok := b.images[name]
	return ok
}

func (b *fakeBuild) LoadImage(name partition.Name) (*partition.Image, error) {
	return b.images[name], nil
}

func defaultProfile(t *testing.T) *device.Profile {
	t.Helper()
	p, err := device.Default()
	require.NoError(t, err)
	return p
}

func newInfo(t *testing.T) (*Info, *otapackage.Writer) {
	t.Helper()
	out := otapackage.NewWriter(t.TempDir() + "/ota.zip")
	return &Info{
		Script:  edify.NewScript(),
		Output:  out,
		Profile: defaultProfile(t),
	}, out
}

func extractDirectives(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.HasPrefix(line, "package_extract_file(") {
			out = append(out, line)
		}
	}
	return out
}

var wantFirmware = []string{
	`ui_print("Flashing firmware images");`,
	`package_extract_file("install/firmware-update/abl.elf", "/dev/block/bootdevice/by-name/abl_a");`,
	`package_extract_file("install/firmware-update/abl.elf", "/dev/block/bootdevice/by-name/abl_b");`,
	`package_extract_file("install/firmware-update/cmnlib64.img", "/dev/block/bootdevice/by-name/cmnlib64_a");`,
	`package_extract_file("install/firmware-update/aop.img", "/dev/block/bootdevice/by-name/aop_a");`,
	`package_extract_file("install/firmware-update/devcfg.img", "/dev/block/bootdevice/by-name/devcfg_a");`,
	`package_extract_file("install/firmware-update/qupfw.img", "/dev/block/bootdevice/by-name/qupfw_a");`,
	`package_extract_file("install/firmware-update/tz.img", "/dev/block/bootdevice/by-name/tz_a");`,
	`package_extract_file("install/firmware-update/storsec.img", "/dev/block/bootdevice/by-name/storsec_a");`,
	`package_extract_file("install/firmware-update/keymaster.img", "/dev/block/bootdevice/by-name/keymaster_a");`,
	`package_extract_file("install/firmware-update/bluetooth.img", "/dev/block/bootdevice/by-name/bluetooth");`,
	`package_extract_file("install/firmware-update/xbl.img", "/dev/block/bootdevice/by-name/xbl_a");`,
	`package_extract_file("install/firmware-update/modem.img", "/dev/block/bootdevice/by-name/modem");`,
	`package_extract_file("install/firmware-update/xbl_config.img", "/dev/block/bootdevice/by-name/xbl_config_a");`,
	`package_extract_file("install/firmware-update/dsp.img", "/dev/block/bootdevice/by-name/dsp");`,
	`package_extract_file("install/firmware-update/logo.img", "/dev/block/bootdevice/by-name/logo");`,
	`package_extract_file("install/firmware-update/cmnlib.img", "/dev/block/bootdevice/by-name/cmnlib_a");`,
	`package_extract_file("install/firmware-update/hyp.img", "/dev/block/bootdevice/by-name/hyp_a");`,
}

func TestUpdateFirmwareIsByteExact(t *testing.T) {
	info, _ := newInfo(t)
	require.NoError(t, UpdateFirmware(info))
	require.Equal(t, wantFirmware, info.Script.Lines())
}

func TestUpdateFirmwareEmptyTable(t *testing.T) {
	info, _ := newInfo(t)
	info.Profile.Firmware = device.Firmware{}
	require.NoError(t, UpdateFirmware(info))
	require.Zero(t, info.Script.Len())
}

func TestAddImageSkipsMissingVbmeta(t *testing.T) {
	info, out := newInfo(t)
	build := newFakeBuild(map[string]string{"IMAGES/dtbo.img": "dtbo-bytes"})
	info.Input = build

	require.NoError(t, installImages(info, build, info.Profile.InstallEnd.Images))

	require.Equal(t, []string{
		`ui_print("Patching dtbo image unconditionally...");`,
		`package_extract_file("dtbo.img", "/dev/block/bootdevice/by-name/dtbo");`,
	}, info.Script.Lines())
	require.Equal(t, []string{"dtbo.img"}, out.Entries())
	data, ok := out.Entry("dtbo.img")
	require.True(t, ok)
	require.Equal(t, "dtbo-bytes", string(data))
	require.Equal(t, []string{"IMAGES/dtbo.img"}, build.reads)
}

func TestAddImageChecksEachImageIndependently(t *testing.T) {
	info, out := newInfo(t)
	build := newFakeBuild(map[string]string{"IMAGES/vbmeta.img": "vb"})

	require.NoError(t, installImages(info, build, info.Profile.InstallEnd.Images))

	require.Equal(t, []string{`package_extract_file("vbmeta.img", "/dev/block/bootdevice/by-name/vbmeta");`},
		extractDirectives(info.Script.Lines()))
	require.Equal(t, []string{"vbmeta.img"}, out.Entries())
}

func TestAddImageReadFailure(t *testing.T) {
	info, _ := newInfo(t)
	build := newFakeBuild(nil)
	build.files["IMAGES/dtbo.img"] = nil
	broken := &brokenArchive{fakeBuild: build}

	err := AddImage(info, broken, device.ImageEntry{Dir: "IMAGES", Name: "dtbo.img", Device: "/dev/dtbo"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "read IMAGES/dtbo.img")
	require.Zero(t, info.Script.Len())
}

type brokenArchive struct {
	*fakeBuild
}

func (b *brokenArchive) Read(string) ([]byte, error) {
	return nil, errors.New("crc mismatch")
}

func TestFullInstallBegin(t *testing.T) {
	info, out := newInfo(t)
	info.Input = newFakeBuild(map[string]string{"RADIO/super_dummy.img": "dummy"})

	require.NoError(t, FullInstallBegin(info))

	require.Equal(t, []string{
		`ui_print("Patching super_dummy.img image unconditionally...");`,
		`package_extract_file("super_dummy.img", "/tmp/super_dummy.img");`,
		`package_extract_file("install/bin/flash_super_dummy.sh", "/tmp/flash_super_dummy.sh");`,
		`set_metadata("/tmp/flash_super_dummy.sh", "uid", 0, "gid", 0, "mode", 0755);`,
		`run_program("/tmp/flash_super_dummy.sh");`,
	}, info.Script.Lines())
	require.Equal(t, []string{"super_dummy.img"}, out.Entries())
}

func TestFullInstallBeginWithoutDummyImage(t *testing.T) {
	info, out := newInfo(t)
	info.Input = newFakeBuild(nil)

	require.NoError(t, FullInstallBegin(info))

	require.Equal(t, []string{
		`package_extract_file("install/bin/flash_super_dummy.sh", "/tmp/flash_super_dummy.sh");`,
		`set_metadata("/tmp/flash_super_dummy.sh", "uid", 0, "gid", 0, "mode", 0755);`,
		`run_program("/tmp/flash_super_dummy.sh");`,
	}, info.Script.Lines())
	require.Empty(t, out.Entries())
}

func TestFullInstallBeginNoProgram(t *testing.T) {
	info, _ := newInfo(t)
	info.Profile.InstallBegin = device.InstallBegin{}
	info.Input = newFakeBuild(nil)

	require.NoError(t, FullInstallBegin(info))
	require.Zero(t, info.Script.Len())
}

func TestFullInstallEndUsesInputArchive(t *testing.T) {
	info, _ := newInfo(t)
	info.Input = newFakeBuild(map[string]string{"IMAGES/dtbo.img": "d", "IMAGES/vbmeta.img": "v"})

	require.NoError(t, FullInstallEnd(info))

	lines := info.Script.Lines()
	require.Equal(t, wantFirmware, lines[:len(wantFirmware)])
	require.Equal(t, []string{
		`ui_print("Patching dtbo image unconditionally...");`,
		`package_extract_file("dtbo.img", "/dev/block/bootdevice/by-name/dtbo");`,
		`ui_print("Patching vbmeta image unconditionally...");`,
		`package_extract_file("vbmeta.img", "/dev/block/bootdevice/by-name/vbmeta");`,
	}, lines[len(wantFirmware):])
}

func TestIncrementalInstallEndUsesTargetArchive(t *testing.T) {
	info, out := newInfo(t)
	info.Source = newFakeBuild(map[string]string{"IMAGES/dtbo.img": "old"})
	info.Target = newFakeBuild(map[string]string{"IMAGES/vbmeta.img": "new"})

	require.NoError(t, IncrementalInstallEnd(info))

	require.Equal(t, []string{"vbmeta.img"}, out.Entries())
	require.Len(t, info.Script.Lines(), len(wantFirmware)+2)
}

func TestFullBlockDifferences(t *testing.T) {
	info, _ := newInfo(t)
	info.Input = newFakeBuild(nil, "system_ext", "odm")

	ops, err := FullBlockDifferences(info)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.Equal(t, partition.Name("odm"), ops[0].Partition)
	require.Equal(t, partition.Name("system_ext"), ops[1].Partition)
	for _, op := range ops {
		require.False(t, op.IsDiff())
	}
}

func TestIncrementalBlockDifferences(t *testing.T) {
	info, _ := newInfo(t)
	info.Source = newFakeBuild(nil, "odm", "product")
	info.Target = newFakeBuild(nil, "product", "system_ext")

	ops, err := IncrementalBlockDifferences(info)
	require.NoError(t, err)

	require.Len(t, ops, 3)
	require.Equal(t, partition.Name("product"), ops[0].Partition)
	require.True(t, ops[0].IsDiff())
	require.Equal(t, partition.Name("system_ext"), ops[1].Partition)
	require.False(t, ops[1].IsDiff())
	require.Equal(t, partition.Name("odm"), ops[2].Partition)
	require.True(t, ops[2].IsRemoval())
}

func TestIncrementalBlockDifferencesLogsRetiredPartitions(t *testing.T) {
	var buf bytes.Buffer
	info, _ := newInfo(t)
	info.Log = logging.New(&buf, logging.Options{})
	info.Source = newFakeBuild(nil, "odm", "product", "system_ext")
	info.Target = newFakeBuild(nil, "product")

	_, err := IncrementalBlockDifferences(info)
	require.NoError(t, err)

	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "partition retired by target build"), out)
	require.Contains(t, out, "partition=odm")
	require.Contains(t, out, "partition=system_ext")
	require.NotContains(t, out, "partition=product")
}

func TestHooksValidateInfo(t *testing.T) {
	info, _ := newInfo(t)

	_, err := FullBlockDifferences(info)
	require.EqualError(t, err, "full package hooks need an input build")

	info.Source = newFakeBuild(nil)
	_, err = IncrementalBlockDifferences(info)
	require.EqualError(t, err, "incremental package hooks need source and target builds")

	require.EqualError(t, UpdateFirmware(nil), "hook info is required")
	require.EqualError(t, FullInstallEnd(&Info{Script: edify.NewScript()}), "hook info has no output package")
}
