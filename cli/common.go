package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/satinavrobotics/depthnav/config"
	"github.com/satinavrobotics/depthnav/engine"
	"github.com/satinavrobotics/depthnav/rimage"
	"github.com/satinavrobotics/depthnav/rimage/transform"
)

// loadConfig reads --config over the defaults and applies every --set override.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		cfg, err = config.Read(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	overrides, err := config.ParseOverrides(c.StringSlice(flagSet))
	if err != nil {
		return config.Config{}, err
	}
	if len(overrides) == 0 {
		return cfg, nil
	}
	return config.FromAttributes(cfg, overrides)
}

func loadIntrinsics(c *cli.Context) (*transform.PinholeCameraIntrinsics, error) {
	path := c.String(flagIntrinsics)
	if path == "" {
		return nil, nil
	}
	intrinsics, err := transform.NewPinholeCameraIntrinsicsFromJSONFile(path)
	if err != nil {
		return nil, err
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return intrinsics, nil
}

func newEngine(c *cli.Context) (*engine.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	intrinsics, err := loadIntrinsics(c)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, loggerFrom(c).Sublogger("engine"), engine.WithIntrinsics(intrinsics))
}

// pass is one engine run over a single frame file.
type pass struct {
	engine *engine.Engine
	frame  *rimage.DepthFrame
	result engine.Result
}

// analyzeFile runs a single pass over the frame stored at path.
func analyzeFile(c *cli.Context, path string) (*pass, error) {
	eng, err := newEngine(c)
	if err != nil {
		return nil, err
	}
	frame, err := rimage.ParseDepthFrame(path)
	if err != nil {
		return nil, err
	}
	if !eng.Process(frame) {
		return nil, errors.Errorf("%s produced no update", path)
	}
	res, _ := eng.Result()
	return &pass{engine: eng, frame: frame, result: res}, nil
}

func requireArgs(c *cli.Context, n int) error {
	if c.Args().Len() < n {
		return errors.Errorf("%q expects %d argument(s), got %d; see --help", c.Command.Name, n, c.Args().Len())
	}
	return nil
}

func printf(c *cli.Context, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(c.App.Writer, format+"\n", a...)
}
