package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/ec2pull/internal/config"
	apperrors "github.com/pratik-mahalle/ec2pull/internal/pkg/errors"
	"github.com/pratik-mahalle/ec2pull/internal/providers"
	"github.com/pratik-mahalle/ec2pull/internal/services"
)

// Runtime holds the process-level collaborators of a run. Tests replace the
// EC2 client and the metadata lookup
type Runtime struct {
	NewClient      func(ctx context.Context, opts providers.AWSOptions) (services.InstanceClient, error)
	LookupIdentity func(ctx context.Context, opts providers.IdentityOptions) (string, error)
	Stdout         io.Writer
	Stderr         io.Writer
	Now            func() time.Time
}

// DefaultRuntime talks to AWS and writes to the process streams
func DefaultRuntime() Runtime {
	return Runtime{
		NewClient: func(ctx context.Context, opts providers.AWSOptions) (services.InstanceClient, error) {
			return providers.NewAWSClient(ctx, opts)
		},
		LookupIdentity: providers.LookupInstanceIdentity,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Now:            time.Now,
	}
}

type rootOptions struct {
	cfgFile string
	list    bool
	host    string
	v       *viper.Viper
}

// NewRootCmd builds the ec2pull command
func NewRootCmd(rt Runtime) *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "ec2pull (--list | --host <private-dns-name>)",
		Short: "Ansible dynamic inventory for the running EC2 instances of an account",
		Long: `ec2pull emits an Ansible dynamic inventory built from running EC2 instances.

--list prints every running instance under _meta.hostvars and groups hosts
by tag as tag_<key>_<value>. --host prints the variables of one instance,
found by its private DNS name.

Set INSTANCEID to limit --list to a single instance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, rt, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolP("debug", "d", false, "turn on debugging output")
	flags.BoolP("verbose", "v", false, "turn on verbose output")
	flags.BoolVar(&opts.list, "list", false, "List groups")
	flags.StringVar(&opts.host, "host", "", "List hosts: print the variables of one private DNS name")
	flags.String("profile", config.DefaultProfile, "AWS shared config profile")
	flags.String("region", "us-east-1", "AWS region to query")
	flags.String("metrics-textfile", "", "write run metrics to this file in node_exporter textfile format")
	flags.Bool("legacy-ebs-optimized", true, "fill ec2_ebs_optimized with the private DNS name, as older releases did")
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default $HOME/.ec2pull/config.yaml)")

	cmd.MarkFlagsMutuallyExclusive("list", "host")
	cmd.MarkFlagsOneRequired("list", "host")

	bindFlags(opts.v, flags, map[string]string{
		"debug":                "debug",
		"verbose":              "verbose",
		"profile":              "aws.profile",
		"region":               "aws.region",
		"metrics-textfile":     "metrics.textfile_path",
		"legacy-ebs-optimized": "inventory.legacy_ebs_optimized",
	})

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return apperrors.Usage(err.Error())
	})
	cmd.SetOut(rt.Stdout)
	cmd.SetErr(rt.Stderr)

	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

func run(cmd *cobra.Command, rt Runtime, opts *rootOptions) error {
	if cmd.Flags().Changed("host") && strings.TrimSpace(opts.host) == "" {
		return apperrors.Usage("--host requires a private DNS name")
	}

	cfg, err := config.Load(opts.v, opts.cfgFile)
	if err != nil {
		return err
	}

	d := newDispatcher(rt, cfg)
	return d.run(cmd.Context(), strings.TrimSpace(opts.host))
}

// Execute runs ec2pull with the process arguments and returns the exit status
func Execute() int {
	return ExecuteArgs(context.Background(), DefaultRuntime(), os.Args[1:])
}

// ExecuteArgs runs ec2pull with args and returns the exit status. Errors
// that reached the log are not printed again; with --debug their trace is
func ExecuteArgs(ctx context.Context, rt Runtime, args []string) int {
	cmd := NewRootCmd(rt)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}

	var logged *loggedError
	if errors.As(err, &logged) {
		if logged.trace {
			fmt.Fprintf(rt.Stderr, "%+v\n", logged.err)
		}
		return apperrors.ExitCode(err)
	}

	fmt.Fprintf(rt.Stderr, "Error: %v\n", err)
	if _, ok := apperrors.As(err); !ok {
		// flag parsing and flag group checks come straight from cobra
		fmt.Fprintf(rt.Stderr, "Run '%s --help' for usage.\n", cmd.Name())
		return apperrors.ExitUsage
	}
	if apperrors.IsCode(err, apperrors.ErrCodeUsage) {
		fmt.Fprintf(rt.Stderr, "Run '%s --help' for usage.\n", cmd.Name())
	}
	return apperrors.ExitCode(err)
}
