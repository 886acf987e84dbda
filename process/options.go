package process

import (
	"fmt"

	cli "github.com/urfave/cli/v3"

	"atmerge/atrules"
	"atmerge/config"
)

// Flags returns command line flags understood by Run.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "pattern", Aliases: []string{"p"},
			Usage: "at-rules to restructure, `NAME` or /REGEXP/FLAGS (overrides configuration)"},
		&cli.BoolFlag{Name: "flatten", Usage: "hoist nested conditional blocks joining conditions (use --flatten=false to disable)"},
		&cli.BoolFlag{Name: "merge", Usage: "coalesce sibling blocks with equal conditions (use --merge=false to disable)"},
		&cli.BoolFlag{Name: "nest", Usage: "regroup sibling blocks sharing leading conditions"},
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
		&cli.StringFlag{Name: "force-zip-cp",
			Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
	}
}

// buildOptions combines processing configuration with command line
// overrides. Flags which were not set on command line keep configured values.
func buildOptions(conf config.ProcessingConfig, cmd *cli.Command) (atrules.Options, error) {
	if cmd != nil {
		if cmd.IsSet("pattern") {
			conf.AtRulePattern = cmd.String("pattern")
		}
		if cmd.IsSet("flatten") {
			conf.Flatten = cmd.Bool("flatten")
		}
		if cmd.IsSet("merge") {
			conf.Merge = cmd.Bool("merge")
		}
		if cmd.IsSet("nest") {
			conf.Nest = cmd.Bool("nest")
		}
	}

	m, err := atrules.ParseMatcher(conf.AtRulePattern)
	if err != nil {
		return atrules.Options{}, fmt.Errorf("at-rule pattern %q: %w", conf.AtRulePattern, err)
	}
	return atrules.Options{
		Matcher: m,
		Flatten: conf.Flatten,
		Merge:   conf.Merge,
		Nest:    conf.Nest,
		Policy:  conf.RangePolicy,
	}, nil
}
