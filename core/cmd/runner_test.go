package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/relaybot/core/config"
	coretelegram "github.com/m3rciful/relaybot/core/telegram"
)

type testConfig struct {
	core *coreconfig.Config
}

func (c testConfig) CoreConfig() *coreconfig.Config { return c.core }

type testApp struct {
	started, stopped, closed bool
}

func (a *testApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { a.started = true; return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { a.stopped = true; return nil },
	}, nil
}

func (a *testApp) Close() error {
	a.closed = true
	return nil
}

func TestRunLifecycle(t *testing.T) {
	t.Setenv("RELAYBOT_TEST_CONFIG", "from-env.yaml")

	app := &testApp{}
	var gotPath string
	err := Run(Options[testConfig]{
		ConfigEnvVar:      "RELAYBOT_TEST_CONFIG",
		DefaultConfigPath: "default.yaml",
		LoadConfig: func(path string) (testConfig, error) {
			gotPath = path
			return testConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, testConfig) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotPath != "from-env.yaml" {
		t.Fatalf("config path = %q", gotPath)
	}
	if !app.started || !app.stopped || !app.closed {
		t.Fatalf("lifecycle = %+v", *app)
	}
}

func TestRunDefaultPath(t *testing.T) {
	t.Setenv("RELAYBOT_TEST_CONFIG", "")

	var gotPath string
	_ = Run(Options[testConfig]{
		ConfigEnvVar:      "RELAYBOT_TEST_CONFIG",
		DefaultConfigPath: "default.yaml",
		LoadConfig: func(path string) (testConfig, error) {
			gotPath = path
			return testConfig{}, errors.New("stop")
		},
		Bootstrap: func(context.Context, testConfig) (TelegramApp, error) { return nil, nil },
	})
	if gotPath != "default.yaml" {
		t.Fatalf("config path = %q", gotPath)
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")
	load := func(string) (testConfig, error) { return testConfig{core: &coreconfig.Config{}}, nil }

	cases := []struct {
		name string
		opts Options[testConfig]
	}{
		{"missing hooks", Options[testConfig]{}},
		{"load fails", Options[testConfig]{
			LoadConfig: func(string) (testConfig, error) { return testConfig{}, boom },
			Bootstrap:  func(context.Context, testConfig) (TelegramApp, error) { return nil, nil },
		}},
		{"no core section", Options[testConfig]{
			LoadConfig: func(string) (testConfig, error) { return testConfig{}, nil },
			Bootstrap:  func(context.Context, testConfig) (TelegramApp, error) { return nil, nil },
		}},
		{"bootstrap fails", Options[testConfig]{
			LoadConfig:     load,
			Bootstrap:      func(context.Context, testConfig) (TelegramApp, error) { return nil, boom },
			ShutdownLogger: func() error { return nil },
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Run(tc.opts); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
