package main

import (
	"fmt"
	"strings"

	"github.com/newtron-network/newtverify/pkg/cli"
	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/verify"
)

const padWidth = 48

// printLinkVerdicts prints one line per link, followed by the fields that
// did not match. With all set, matched fields are listed too.
func printLinkVerdicts(verdicts []verify.LinkVerdict, all bool) {
	matched := 0
	for _, v := range verdicts {
		fmt.Printf("%s %s\n", cli.DotPad(v.LinkID, padWidth), cli.Mark(v.OverallMatched))
		if v.OverallMatched {
			matched++
		}
		if len(v.PerDevice) == 0 {
			fmt.Println(cli.Dim("    no objects to compare"))
			continue
		}
		if v.OverallMatched && !all {
			continue
		}

		t := cli.NewTable("HOST", "OBJECT", "FIELD", "INTENT", "ACTUAL", "").WithPrefix("    ")
		for _, d := range v.PerDevice {
			if d.Matched && !all {
				continue
			}
			object := d.Object
			if d.Missing {
				object += " " + cli.Yellow("(not reported)")
			}
			for _, f := range d.Fields {
				if f.Matched && !all {
					continue
				}
				t.Row(d.Hostname, object, f.Field, f.Intent, cli.Missing(f.Actual), cli.Mark(f.Matched))
			}
		}
		t.Flush()
	}

	fmt.Println()
	summary := fmt.Sprintf("%d of %d links matched", matched, len(verdicts))
	if matched == len(verdicts) && matched > 0 {
		fmt.Println(cli.Green(summary))
	} else {
		fmt.Println(cli.Red(summary))
	}
}

// printLabResult prints each host's verdict and a positional diff for every
// command whose output did not match.
func printLabResult(def *lab.Definition, res *verify.LabCheckResult) {
	fmt.Printf("Lab %s", cli.Bold(res.LabID))
	if def.Name != "" {
		fmt.Printf(" (%s)", def.Name)
	}
	fmt.Println()

	verified := 0
	hosts := res.Hosts()
	for _, host := range hosts {
		hr := res.PerHost[host]
		total := len(hr.Matched) + len(hr.Unmatched)
		status := cli.Green("VERIFIED")
		if hr.Verified() {
			verified++
		} else {
			status = cli.Red("NOT VERIFIED")
		}
		fmt.Printf("  %s %s %s\n", cli.DotPad(host, padWidth-2), status,
			cli.Dim(fmt.Sprintf("(%d/%d commands)", len(hr.Matched), total)))

		for _, u := range hr.Unmatched {
			fmt.Printf("    %s %s\n", cli.Red("✗"), u.Command)
			t := cli.NewTable("EXPECTED", "ACTUAL").WithPrefix("      ")
			for _, d := range u.Diffs {
				t.Row(cli.Missing(d.Expected), cli.Missing(strings.TrimSpace(d.Actual)))
			}
			t.Flush()
		}
	}

	fmt.Println()
	summary := fmt.Sprintf("%d of %d hosts verified", verified, len(hosts))
	if res.Verified() {
		fmt.Println(cli.Green(summary))
	} else {
		fmt.Println(cli.Red(summary))
	}
}
