package cli

import (
	"context"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/pratik-mahalle/ec2pull/internal/config"
	"github.com/pratik-mahalle/ec2pull/internal/domain/inventory"
	"github.com/pratik-mahalle/ec2pull/internal/pkg/logger"
	"github.com/pratik-mahalle/ec2pull/internal/pkg/metrics"
	"github.com/pratik-mahalle/ec2pull/internal/providers"
	"github.com/pratik-mahalle/ec2pull/internal/services"
)

// loggedError is a fatal error that has already been written to the log
type loggedError struct {
	err   error
	trace bool
}

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

// dispatcher drives one run: environment check, authentication, then
// host or list mode
type dispatcher struct {
	rt       Runtime
	cfg      *config.Config
	log      *logger.Logger
	recorder *metrics.Recorder
}

func newDispatcher(rt Runtime, cfg *config.Config) *dispatcher {
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel(),
		Format: cfg.Logging.Format,
		Output: rt.Stderr,
	}).With("run_id", uuid.NewString())

	return &dispatcher{
		rt:       rt,
		cfg:      cfg,
		log:      log,
		recorder: metrics.NewRecorder(),
	}
}

func (d *dispatcher) run(ctx context.Context, host string) error {
	d.log.Info("** ec2pull begin")

	err := d.dispatch(ctx, host)
	d.recorder.RecordRun(err == nil, d.rt.Now())
	d.writeMetrics()

	if err == nil {
		d.log.Info("** ec2pull end")
	}
	return err
}

func (d *dispatcher) dispatch(ctx context.Context, host string) error {
	scope, err := d.environmentCheck(ctx)
	if err != nil {
		return err
	}

	client, err := d.authenticate(ctx)
	if err != nil {
		return err
	}

	svc := services.NewInventoryService(client, d.log, d.recorder, providers.NormalizerOptions{
		LegacyEBSOptimized: d.cfg.Inventory.LegacyEBSOptimized,
	})

	if host != "" {
		return d.hostMode(ctx, svc, host)
	}
	return d.listMode(ctx, svc, scope)
}

// environmentCheck returns the instance list mode is scoped to. INSTANCEID
// wins; otherwise the metadata service must answer, but its id only
// confirms where we run and does not narrow the listing
func (d *dispatcher) environmentCheck(ctx context.Context) (string, error) {
	if d.cfg.HasInstanceScope() {
		d.log.With("instance_id", d.cfg.Inventory.InstanceID).
			Info("Found environment variable " + config.InstanceScopeEnv + " was set, so we will be limited to a single instance")
		return d.cfg.Inventory.InstanceID, nil
	}

	self, err := d.rt.LookupIdentity(ctx, providers.IdentityOptions{
		Endpoint: d.cfg.AWS.MetadataEndpoint,
		Timeout:  d.cfg.AWS.MetadataTimeout,
	})
	if err != nil {
		return "", d.fatal(err, "Failed to find either "+config.InstanceScopeEnv+" variable or open instance metadata connection")
	}

	d.log.With("instance_id", self).Info("Running on EC2 instance")
	return "", nil
}

func (d *dispatcher) authenticate(ctx context.Context) (services.InstanceClient, error) {
	client, err := d.rt.NewClient(ctx, providers.AWSOptions{
		Region:          d.cfg.AWS.Region,
		Profile:         d.cfg.AWS.Profile,
		AccessKeyID:     d.cfg.AWS.AccessKeyID,
		SecretAccessKey: d.cfg.AWS.SecretAccessKey,
		SessionToken:    d.cfg.AWS.SessionToken,
	})
	if err != nil {
		return nil, d.fatal(err, "Failed to open connection for ec2")
	}

	d.log.WithFields(map[string]interface{}{
		"region":  d.cfg.AWS.Region,
		"profile": d.cfg.AWS.Profile,
	}).Debug("EC2 client ready")
	return client, nil
}

func (d *dispatcher) hostMode(ctx context.Context, svc inventory.Service, host string) error {
	md, err := svc.Host(ctx, host)
	if err != nil {
		return d.fatal(err, "Failed to find instance data for private_dns_name: "+host)
	}
	if err := printJSON(d.rt.Stdout, md); err != nil {
		return d.fatal(err, "Failed to write host variables")
	}
	return nil
}

func (d *dispatcher) listMode(ctx context.Context, svc inventory.Service, scope string) error {
	inv, err := svc.List(ctx, scope)
	if err != nil {
		return d.fatal(err, "Failure to iterate over ec2 instances")
	}
	if err := printJSON(d.rt.Stdout, inv); err != nil {
		return d.fatal(err, "Failed to write inventory")
	}
	return nil
}

// fatal logs err once. In debug mode the returned error carries a stack
// trace for ExecuteArgs to print
func (d *dispatcher) fatal(err error, msg string) error {
	d.log.ErrorWithErr(err, msg)
	if d.cfg.Debug {
		return &loggedError{err: pkgerrors.Wrap(err, msg), trace: true}
	}
	return &loggedError{err: err}
}

func (d *dispatcher) writeMetrics() {
	path := d.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := d.recorder.WriteTextfile(path); err != nil {
		d.log.With("path", path).WithError(err).Warn("Failed to write metrics textfile")
	}
}
