package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/heraldhq/herald/auth"
	"github.com/heraldhq/herald/notify"
	"github.com/heraldhq/herald/server"
	"github.com/heraldhq/herald/services/diagnostic"
	"github.com/heraldhq/herald/services/notification"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// env holds the services opened for a single invocation.
type env struct {
	stdout io.Writer
	stderr io.Writer

	diagService *diagnostic.Service
	server      *server.Server
	diag        *diagnostic.CmdHandler
	check       auth.CheckFunc
}

func (e *env) store() *notification.Service {
	return e.server.NotificationService
}

func (e *env) print(v interface{}) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func createApp(stdout, stderr io.Writer) *cli.App {
	e := &env{stdout: stdout, stderr: stderr}
	return &cli.App{
		Name:      "heraldctl",
		Usage:     "Manage notification endpoints and matchers",
		UsageText: "heraldctl [global options] command [command options] [arguments...]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to the herald configuration file",
				EnvVars:   []string{"HERALD_CONFIG"},
				TakesFile: true,
			},
			&cli.StringSliceFlag{
				Name:  "audit-path",
				Usage: "Only list entities below these resource paths, e.g. /mapping/notification/ops",
			},
		},
		Before: e.open,
		After:  e.close,
		Commands: []*cli.Command{
			{
				Name:  "endpoint",
				Usage: "Notification endpoint commands",
				Subcommands: []*cli.Command{
					newEndpointListCmd(e),
					newEndpointShowCmd(e),
					newEndpointAddCmd(e),
					newEndpointUpdateCmd(e),
					newEndpointDeleteCmd(e),
				},
			},
			{
				Name:  "matcher",
				Usage: "Notification matcher commands",
				Subcommands: []*cli.Command{
					newMatcherListCmd(e),
					newMatcherShowCmd(e),
					newMatcherAddCmd(e),
					newMatcherUpdateCmd(e),
					newMatcherDeleteCmd(e),
				},
			},
			newDigestCmd(e),
			newEvaluateCmd(e),
		},
	}
}

func (e *env) open(ctx *cli.Context) error {
	c, err := server.ParseConfig(ctx.String("config"))
	if err != nil {
		return err
	}
	if err := c.ApplyEnvOverrides(); err != nil {
		return err
	}
	e.diagService = diagnostic.NewService(c.Logging, e.stdout, e.stderr)
	if err := e.diagService.Open(); err != nil {
		return errors.Wrap(err, "open logging")
	}
	e.diag = e.diagService.NewCmdHandler()
	e.diag.Command(ctx.Args().First(), ctx.Args().Tail())

	s, err := server.New(c, e.diagService)
	if err != nil {
		return err
	}
	if err := s.Open(); err != nil {
		return err
	}
	e.server = s

	if paths := ctx.StringSlice("audit-path"); len(paths) > 0 {
		privileges := make(map[string][]auth.Privilege, len(paths))
		for _, p := range paths {
			privileges[p] = []auth.Privilege{auth.AuditPrivilege}
		}
		e.check = auth.NewUser("heraldctl", false, privileges).Check(auth.AuditPrivilege)
	} else {
		e.check = auth.AdminUser.Check(auth.AuditPrivilege)
	}
	return nil
}

// close never fails the command, errors are logged.
func (e *env) close(ctx *cli.Context) error {
	if e.server != nil {
		if err := e.server.Close(); err != nil {
			e.diag.Error("failed to close server", err)
		}
	}
	if e.diagService != nil {
		e.diagService.Close()
	}
	return nil
}

func digestFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "digest",
		Usage: "Fail unless the configuration still has this digest",
	}
}

func requireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return errors.Wrapf(notification.ErrValidation, "%s expects %d argument(s): %s", ctx.Command.Name, n, ctx.Command.ArgsUsage)
	}
	return nil
}

type endpointView struct {
	Kind     notification.Kind     `json:"kind"`
	Endpoint notification.Endpoint `json:"endpoint"`
}

type listView struct {
	Digest    notification.Digest          `json:"digest"`
	Endpoints []endpointView               `json:"endpoints,omitempty"`
	Matchers  []notification.MatcherConfig `json:"matchers,omitempty"`
}

func newEndpointListCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Usage:   "List endpoints, secrets are not shown",
		Aliases: []string{"ls"},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only list endpoints of this kind",
			},
		},
		Action: func(ctx *cli.Context) error {
			var kind notification.Kind
			if k := ctx.String("kind"); k != "" {
				var err error
				if kind, err = notification.ParseKind(k); err != nil {
					return err
				}
			}
			snapshot, digest, err := e.store().Read(ctx.Context)
			if err != nil {
				return err
			}
			view := listView{Digest: digest, Endpoints: []endpointView{}}
			for _, ep := range snapshot.VisibleEndpoints(e.check) {
				if kind != "" && ep.Kind() != kind {
					continue
				}
				view.Endpoints = append(view.Endpoints, endpointView{Kind: ep.Kind(), Endpoint: ep})
			}
			return e.print(view)
		},
	}
}

func newEndpointShowCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show an endpoint, secrets are not shown",
		ArgsUsage: "NAME",
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			snapshot, _, err := e.store().Read(ctx.Context)
			if err != nil {
				return err
			}
			ep, err := snapshot.Endpoint(ctx.Args().First())
			if err != nil {
				return err
			}
			return e.print(endpointView{Kind: ep.Kind(), Endpoint: ep.Redacted()})
		},
	}
}

func newEndpointAddCmd(e *env) *cli.Command {
	props := newPropertiesFlag()
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an endpoint",
		ArgsUsage: "KIND NAME",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "set",
				Usage: "Set a property, key=value, repeat for lists",
				Value: props,
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 2); err != nil {
				return err
			}
			kind, err := notification.ParseKind(ctx.Args().Get(0))
			if err != nil {
				return err
			}
			ep, err := notification.NewEndpoint(kind, ctx.Args().Get(1), props.values)
			if err != nil {
				return err
			}
			return e.store().AddEndpoint(ctx.Context, ep)
		},
	}
}

func updateFlags(props *propertiesFlag) []cli.Flag {
	return []cli.Flag{
		&cli.GenericFlag{
			Name:  "set",
			Usage: "Set a property, key=value, repeat for lists",
			Value: props,
		},
		&cli.StringSliceFlag{
			Name:  "delete",
			Usage: "Clear a property",
		},
		digestFlag(),
	}
}

func updateRequest(ctx *cli.Context, props *propertiesFlag) notification.UpdateRequest {
	return notification.UpdateRequest{
		Name:   ctx.Args().First(),
		Set:    props.values,
		Delete: ctx.StringSlice("delete"),
		Digest: notification.Digest(ctx.String("digest")),
	}
}

func newEndpointUpdateCmd(e *env) *cli.Command {
	props := newPropertiesFlag()
	return &cli.Command{
		Name:      "update",
		Usage:     "Update properties of an endpoint",
		ArgsUsage: "NAME",
		Flags:     updateFlags(props),
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			return e.store().UpdateEndpoint(ctx.Context, updateRequest(ctx, props))
		},
	}
}

func newEndpointDeleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an endpoint that no matcher targets",
		ArgsUsage: "NAME",
		Aliases:   []string{"rm"},
		Flags:     []cli.Flag{digestFlag()},
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			return e.store().DeleteEndpoint(ctx.Context, ctx.Args().First(), notification.Digest(ctx.String("digest")))
		},
	}
}

func newMatcherListCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Usage:   "List matchers in evaluation order",
		Aliases: []string{"ls"},
		Action: func(ctx *cli.Context) error {
			snapshot, digest, err := e.store().Read(ctx.Context)
			if err != nil {
				return err
			}
			return e.print(listView{
				Digest:   digest,
				Matchers: append([]notification.MatcherConfig{}, snapshot.VisibleMatchers(e.check)...),
			})
		},
	}
}

func newMatcherShowCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a matcher",
		ArgsUsage: "NAME",
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			snapshot, _, err := e.store().Read(ctx.Context)
			if err != nil {
				return err
			}
			m, err := snapshot.Matcher(ctx.Args().First())
			if err != nil {
				return err
			}
			return e.print(m)
		},
	}
}

func newMatcherAddCmd(e *env) *cli.Command {
	props := newPropertiesFlag()
	return &cli.Command{
		Name:      "add",
		Usage:     "Append a matcher",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "set",
				Usage: "Set a property, key=value, repeat for lists",
				Value: props,
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			m, err := notification.NewMatcher(ctx.Args().First(), props.values)
			if err != nil {
				return err
			}
			return e.store().AddMatcher(ctx.Context, m)
		},
	}
}

func newMatcherUpdateCmd(e *env) *cli.Command {
	props := newPropertiesFlag()
	return &cli.Command{
		Name:      "update",
		Usage:     "Update properties of a matcher",
		ArgsUsage: "NAME",
		Flags:     updateFlags(props),
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			return e.store().UpdateMatcher(ctx.Context, updateRequest(ctx, props))
		},
	}
}

func newMatcherDeleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a matcher",
		ArgsUsage: "NAME",
		Aliases:   []string{"rm"},
		Flags:     []cli.Flag{digestFlag()},
		Action: func(ctx *cli.Context) error {
			if err := requireArgs(ctx, 1); err != nil {
				return err
			}
			return e.store().DeleteMatcher(ctx.Context, ctx.Args().First(), notification.Digest(ctx.String("digest")))
		},
	}
}

func newDigestCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "Print the digest of the current configuration",
		Action: func(ctx *cli.Context) error {
			_, digest, err := e.store().Read(ctx.Context)
			if err != nil {
				return err
			}
			_, err = io.WriteString(e.stdout, string(digest)+"\n")
			return err
		},
	}
}

type evaluateView struct {
	Matched []string `json:"matched"`
	Targets []string `json:"targets"`
}

func newEvaluateCmd(e *env) *cli.Command {
	fields := newFieldsFlag()
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Print the targets an event would be sent to",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "field",
				Usage: "Event field, key=value",
				Value: fields,
			},
			&cli.StringFlag{
				Name:  "severity",
				Usage: "Event severity: info, notice, warning, error or unknown",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "time",
				Usage: "Event time in RFC3339, defaults to now",
			},
		},
		Action: func(ctx *cli.Context) error {
			sev, err := notify.ParseSeverity(ctx.String("severity"))
			if err != nil {
				return errors.Wrap(notification.ErrValidation, err.Error())
			}
			event := notify.Event{
				Fields:   fields.values,
				Severity: sev,
			}
			if ts := ctx.String("time"); ts != "" {
				event.Timestamp, err = time.Parse(time.RFC3339, ts)
				if err != nil {
					return errors.Wrapf(notification.ErrValidation, "invalid time %q", ts)
				}
			}
			res, err := e.store().Evaluate(ctx.Context, event)
			if err != nil {
				return err
			}
			view := evaluateView{Matched: []string{}, Targets: []string{}}
			view.Matched = append(view.Matched, res.Matched...)
			view.Targets = append(view.Targets, res.Targets...)
			return e.print(view)
		},
	}
}
