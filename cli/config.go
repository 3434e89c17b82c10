package cli

import (
	"encoding/json"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/satinavrobotics/depthnav/config"
)

// ConfigPrintAction prints the thresholds --config and --set resolve to.
func ConfigPrintAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	printf(c, "%s", out)
	return nil
}

// ConfigDiffAction prints the fields that differ between two threshold files.
func ConfigDiffAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	left, err := config.Read(c.Args().Get(0))
	if err != nil {
		return err
	}
	right, err := config.Read(c.Args().Get(1))
	if err != nil {
		return err
	}
	diff, err := config.DiffConfigs(left, right)
	if err != nil {
		return err
	}
	if diff.Equal() {
		printf(c, "no differences")
		return nil
	}
	printf(c, "changed: %s", strings.Join(diff.Changed, ", "))
	printf(c, "%s", diff)
	return nil
}

// ConfigFieldsAction lists every field accepted by --set with its default value.
func ConfigFieldsAction(c *cli.Context) error {
	defaults := map[string]interface{}{}
	raw, err := json.Marshal(config.Default())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &defaults); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Default"})
	for _, name := range config.FieldNames() {
		t.AppendRow(table.Row{name, defaults[name]})
	}
	t.Render()
	return nil
}
