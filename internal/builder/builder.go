// Package builder runs the package-build pass: it unpacks target-files
// packages, calls the device hooks in a fixed order, and writes the OTA
// package with its install script and operation manifest.
package builder

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/edify"
	"github.com/conn-castle/ota-layer/internal/logging"
	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/otapackage"
	"github.com/conn-castle/ota-layer/internal/partition"
	"github.com/conn-castle/ota-layer/internal/plan"
	"github.com/conn-castle/ota-layer/internal/releasetools"
	"github.com/conn-castle/ota-layer/internal/targetfiles"
)

// Request names the inputs of one build. A non-empty Source makes the
// package incremental. A nil Profile selects the embedded default.
type Request struct {
	Source  string
	Target  string
	Output  string
	Profile *device.Profile
	Log     logrus.FieldLogger
}

// Kind returns the package kind the request produces.
func (r Request) Kind() string {
	if r.Source != "" {
		return plan.KindIncremental
	}
	return plan.KindFull
}

// Result is the outcome of a build pass.
type Result struct {
	Kind       string
	Operations []partition.Operation
	Script     *edify.Script
	Manifest   *plan.Manifest
	// Entries lists the package entries in write order.
	Entries []string
	// Output is the written package path; empty when nothing was written.
	Output string
}

type step struct {
	name string
	run  func() error
}

// RunFull builds a full package from req.Target. req.Source is ignored.
func RunFull(sys System, req Request) (*Result, error) {
	req.Source = ""
	return Run(sys, req)
}

// RunIncremental builds an incremental package from req.Source to req.Target.
func RunIncremental(sys System, req Request) (*Result, error) {
	if req.Source == "" {
		return nil, errors.New(messages.BuildSourceRequired)
	}
	return Run(sys, req)
}

// Run builds the package req describes and writes it to req.Output. The
// output is locked for the whole pass and replaced atomically.
func Run(sys System, req Request) (*Result, error) {
	if req.Output == "" {
		return nil, errors.New(messages.BuildOutputRequired)
	}
	var result *Result
	err := otapackage.WithLock(req.Output, func() error {
		out := otapackage.NewWriter(req.Output)
		res, err := generate(sys, req, out)
		if err != nil {
			return err
		}
		if err := writePackage(out, res); err != nil {
			return err
		}
		res.Entries = out.Entries()
		res.Output = out.Path()
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.OrDiscard(req.Log).WithFields(logrus.Fields{
		"kind":       result.Kind,
		"output":     result.Output,
		"operations": len(result.Operations),
		"entries":    len(result.Entries),
	}).Info("wrote OTA package")
	return result, nil
}

// Render runs every hook like Run but writes nothing. Entries lists what the
// package would hold.
func Render(sys System, req Request) (*Result, error) {
	out := otapackage.NewWriter(req.Output)
	res, err := generate(sys, req, out)
	if err != nil {
		return nil, err
	}
	res.Entries = append(out.Entries(), edify.ScriptPath, plan.ManifestPath)
	return res, nil
}

// Plan runs only the difference scheduler and returns its operations.
func Plan(sys System, req Request) ([]partition.Operation, error) {
	s, info, err := prepare(sys, req, otapackage.NewWriter(""))
	if err != nil {
		return nil, err
	}
	defer s.close()
	if req.Kind() == plan.KindIncremental {
		return releasetools.IncrementalBlockDifferences(info)
	}
	return releasetools.FullBlockDifferences(info)
}

func generate(sys System, req Request, out *otapackage.Writer) (*Result, error) {
	s, info, err := prepare(sys, req, out)
	if err != nil {
		return nil, err
	}
	defer s.close()

	manifest := plan.NewManifest(req.Kind())
	var steps []step
	if req.Kind() == plan.KindFull {
		steps = []step{
			{name: "install begin", run: func() error { return releasetools.FullInstallBegin(info) }},
			{name: "block differences", run: recordDifferences(info, manifest, releasetools.FullBlockDifferences)},
			{name: "install end", run: func() error { return releasetools.FullInstallEnd(info) }},
		}
	} else {
		steps = []step{
			{name: "block differences", run: recordDifferences(info, manifest, releasetools.IncrementalBlockDifferences)},
			{name: "install end", run: func() error { return releasetools.IncrementalInstallEnd(info) }},
		}
	}
	if err := runSteps(s.log, steps); err != nil {
		return nil, err
	}
	return &Result{
		Kind:       manifest.Kind,
		Operations: manifest.Operations(),
		Script:     info.Script,
		Manifest:   manifest,
	}, nil
}

// prepare validates req and unpacks its builds into a fresh temp dir. The
// caller closes the returned session.
func prepare(sys System, req Request, out releasetools.Output) (*session, *releasetools.Info, error) {
	if sys == nil {
		return nil, nil, errors.New(messages.BuildSystemRequired)
	}
	if req.Target == "" {
		return nil, nil, errors.New(messages.BuildTargetRequired)
	}
	profile := req.Profile
	if profile == nil {
		var err error
		if profile, err = device.Default(); err != nil {
			return nil, nil, err
		}
	}

	s, err := openSession(sys, req.Log)
	if err != nil {
		return nil, nil, err
	}
	info := &releasetools.Info{
		Script:  edify.NewScript(),
		Output:  out,
		Profile: profile,
		Log:     s.log,
	}
	target, err := s.unpack(req.Target, "target")
	if err != nil {
		s.close()
		return nil, nil, err
	}
	if req.Kind() == plan.KindFull {
		info.Input = target
		return s, info, nil
	}
	source, err := s.unpack(req.Source, "source")
	if err != nil {
		s.close()
		return nil, nil, err
	}
	info.Source = source
	info.Target = target
	return s, info, nil
}

func recordDifferences(info *releasetools.Info, rec plan.Recorder, hook func(*releasetools.Info) ([]partition.Operation, error)) func() error {
	return func() error {
		ops, err := hook(info)
		if err != nil {
			return err
		}
		for _, op := range ops {
			rec.RecordDifference(op)
		}
		return nil
	}
}

func runSteps(log logrus.FieldLogger, steps []step) error {
	for _, st := range steps {
		log.WithField("step", st.name).Debug("running build step")
		if err := st.run(); err != nil {
			return fmt.Errorf(messages.BuildStepFailedFmt, st.name, err)
		}
	}
	return nil
}

func writePackage(out *otapackage.Writer, res *Result) error {
	if err := out.WriteEntry(edify.ScriptPath, []byte(res.Script.String())); err != nil {
		return err
	}
	data, err := res.Manifest.Encode()
	if err != nil {
		return err
	}
	if err := out.WriteEntry(plan.ManifestPath, data); err != nil {
		return err
	}
	return out.Commit()
}

// session owns the opened archives and the temp dir of one pass.
type session struct {
	sys      System
	log      logrus.FieldLogger
	tempDir  string
	packages []*targetfiles.Package
}

func openSession(sys System, log logrus.FieldLogger) (*session, error) {
	dir, err := sys.MkdirTemp("", "otal-")
	if err != nil {
		return nil, fmt.Errorf(messages.BuildTempDirFailedFmt, err)
	}
	return &session{sys: sys, log: logging.OrDiscard(log), tempDir: dir}, nil
}

func (s *session) unpack(path string, name string) (*targetfiles.Build, error) {
	pkg, err := targetfiles.Open(path)
	if err != nil {
		return nil, err
	}
	s.packages = append(s.packages, pkg)
	build, err := targetfiles.Unpack(pkg, filepath.Join(s.tempDir, name), s.log)
	if err != nil {
		return nil, fmt.Errorf(messages.BuildUnpackFailedFmt, path, err)
	}
	return build, nil
}

func (s *session) close() {
	for _, pkg := range s.packages {
		_ = pkg.Close()
	}
	if err := s.sys.RemoveAll(s.tempDir); err != nil {
		s.log.WithError(err).WithField("path", s.tempDir).Warn(messages.BuildCleanupFailed)
	}
}
