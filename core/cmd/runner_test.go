package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coretelegram "github.com/m3rciful/fitbot/core/telegram"
)

type testConfig struct{ core *coreconfig.Config }

func (c testConfig) CoreConfig() *coreconfig.Config { return c.core }

type testApp struct {
	opts coretelegram.RunOptions
	err  error
}

func (a testApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, a.err }

func TestRunWiresHooks(t *testing.T) {
	t.Setenv("FITBOT_TEST_CONFIG", "from-env.yaml")

	var (
		loadedPath string
		hooks      []string
		loggerDown bool
	)
	app := testApp{opts: coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { hooks = append(hooks, "start"); return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { hooks = append(hooks, "stop"); return nil },
	}}
	err := Run(Options{
		ConfigEnvVar:      "FITBOT_TEST_CONFIG",
		DefaultConfigPath: "default.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return testConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { loggerDown = true; return nil },
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
	if loadedPath != "from-env.yaml" {
		t.Fatalf("path = %s", loadedPath)
	}
	if len(hooks) != 2 || hooks[0] != "start" || hooks[1] != "stop" {
		t.Fatalf("hooks = %v", hooks)
	}
	if !loggerDown {
		t.Fatal("logger not shut down")
	}
}

func TestRunErrors(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}

	load := func(string) (ConfigCarrier, error) { return testConfig{core: &coreconfig.Config{}}, nil }
	boom := errors.New("boom")
	var loggerDown bool
	err := Run(Options{
		ConfigEnvVar:      "FITBOT_TEST_UNSET",
		DefaultConfigPath: "x.yaml",
		LoadConfig:        load,
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger:    func() error { loggerDown = true; return nil },
	})
	if !errors.Is(err, boom) || !loggerDown {
		t.Fatalf("err = %v, loggerDown = %v", err, loggerDown)
	}

	err = Run(Options{
		ConfigEnvVar: "FITBOT_TEST_UNSET",
		LoadConfig:   load,
		Bootstrap:    func(ConfigCarrier) (TelegramApp, error) { return testApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected missing path error")
	}

	err = Run(Options{
		DefaultConfigPath: "x.yaml",
		ConfigEnvVar:      "FITBOT_TEST_UNSET",
		LoadConfig:        func(string) (ConfigCarrier, error) { return testConfig{}, nil },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return testApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected missing core config error")
	}
}
