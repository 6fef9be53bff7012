package main

import (
	"fmt"
	"math/rand"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/checkkit/check-jitter/check"
	"github.com/checkkit/check-jitter/config"
	"github.com/checkkit/check-jitter/decision"
	"github.com/checkkit/check-jitter/statistics"
)

const version = "1.0.0"

const about = `check_jitter - A monitoring plugin that measures network jitter.

AGGREGATION METHOD

The plugin can aggregate the deltas from multiple samples in the following ways:
- average: the average of all deltas (arithmetic mean) [default]
- median: the median of all deltas
- max: the maximum of all deltas
- min: the minimum of all deltas

HOSTNAME

If the hostname resolves to multiple IP addresses, the plugin will use the first
address returned by the DNS resolver and skip the rest.

While using a hostname is supported, consider using IP addresses instead. It's
better to set up multiple tests to cover each IP individually rather than relying
on hostname resolution.

SAMPLES

The number of pings to send to the target host. Must be greater than 2.

SAMPLE INTERVALS

When -m and -M are both set to 0, the plugin will send pings immediately after
receiving a response.

When -m and -M are set to the same value, the plugin will send pings at a fixed
interval.

When -m and -M are set to different values, the plugin will send pings at random
intervals between the two values.

-m must be less than or equal to -M.

THRESHOLD SYNTAX

Thresholds are defined using monitoring plugin range syntax.

Example ranges:
+------------------+-------------------------------------------------+
| Range definition | Generate an alert if x...                       |
+------------------+-------------------------------------------------+
| 10               | < 0 or > 10, (outside the range of {0 .. 10})   |
| 10:              | < 10, (outside {10 .. inf})                     |
| ~:10             | > 10, (outside the range of {-inf .. 10})       |
| 10:20            | < 10 or > 20, (outside the range of {10 .. 20}) |
| @10:20           | >= 10 and <= 20, (inside the range of {10..20}) |
+------------------+-------------------------------------------------+`

func main() {
	cmd, result := newRootCmd()
	if err := cmd.Execute(); err != nil {
		exitWith(decision.UnknownUsage(err.Error()))
	}
	if flagChanged(cmd, "help") || flagChanged(cmd, "version") {
		// Per monitoring-plugins guidelines --help and --version exit with
		// the UNKNOWN code.
		os.Exit(3)
	}
	exitWith(*result)
}

func newRootCmd() (*cobra.Command, *decision.Status) {
	result := &decision.Status{}
	var (
		configPath string
		verbosity  int
	)

	cmd := &cobra.Command{
		Use:           "check_jitter",
		Short:         "A monitoring plugin that measures network jitter",
		Long:          about,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger(verbosity)

			params, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				*result = decision.UnknownError(err)
				return nil
			}

			*result = checkJitter(params)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("aggregation-method", "a", "average", "Aggregation method to use for multiple samples")
	flags.StringP("critical", "c", "", "Critical limit for network jitter in milliseconds")
	flags.BoolP("dgram-socket", "D", false, "Use a datagram socket instead of a raw socket (expert option)")
	flags.StringP("host", "H", "", "Hostname or IP address to ping")
	flags.Uint64P("min-interval", "m", 0, "Minimum interval between ping samples in milliseconds")
	flags.Uint64P("max-interval", "M", 0, "Maximum interval between ping samples in milliseconds")
	flags.IntP("precision", "p", 3, "Precision of the output decimal places")
	flags.IntP("samples", "s", 10, "Sample size: the number of pings to send")
	flags.Uint64P("timeout", "t", 1000, "Timeout in milliseconds per individual ping check")
	flags.StringP("warning", "w", "", "Warning limit for network jitter in milliseconds")
	flags.CountVarP(&verbosity, "verbose", "v", "Enable verbose output. Use multiple times to increase verbosity (e.g. -vvv)")
	flags.StringVar(&configPath, "config", "", "Optional YAML file with default values for any flag")

	return cmd, result
}

// checkJitter runs the validation and measurement pipeline and returns the
// terminal status. Every failure maps to an UNKNOWN classification; nothing
// here terminates the process.
func checkJitter(params *config.Params) decision.Status {
	if params.MinIntervalMillis > params.MaxIntervalMillis {
		return decision.UnknownInvalidInterval(params.MinIntervalMillis, params.MaxIntervalMillis)
	}
	if params.Host == "" {
		return decision.UnknownUsage(`required flag "host" not set`)
	}
	if !validHost(params.Host) {
		return decision.UnknownInvalidAddr(params.Host)
	}
	if params.Samples < 3 {
		return decision.UnknownUsage(fmt.Sprintf("invalid value '%d' for '--samples': the sample size must be at least 3", params.Samples))
	}
	if params.Precision < 0 {
		return decision.UnknownUsage(fmt.Sprintf("invalid value '%d' for '--precision': the precision must not be negative", params.Precision))
	}
	if params.Warning == "" && params.Critical == "" {
		return decision.UnknownNoThresholds()
	}

	method, err := statistics.ParseMethod(params.AggregationMethod)
	if err != nil {
		return decision.UnknownUsage(err.Error())
	}

	thresholds := &decision.Thresholds{}
	if params.Warning != "" {
		r, err := decision.ParseRange(params.Warning)
		if err != nil {
			return decision.UnknownRangeParse(params.Warning, err)
		}
		thresholds.Warning = r
	}
	if params.Critical != "" {
		r, err := decision.ParseRange(params.Critical)
		if err != nil {
			return decision.UnknownRangeParse(params.Critical, err)
		}
		thresholds.Critical = r
	}

	socketType := check.Raw
	if params.DgramSocket {
		socketType = check.Datagram
	}
	timeout := time.Duration(params.TimeoutMillis) * time.Millisecond

	logrus.Infof("%-34s%s", "Will check jitter for host:", params.Host)
	logrus.Infof("%-34s%s", "Aggregation method:", method)
	logrus.Infof("%-34s%s", "Socket type:", socketType)
	logrus.Infof("%-34s%d", "Sample size:", params.Samples)
	logrus.Infof("%-34s%dms", "Timeout per ping:", params.TimeoutMillis)
	logrus.Infof("%-34s%dms", "Minimum wait time between pings:", params.MinIntervalMillis)
	logrus.Infof("%-34s%dms", "Maximum wait time between pings:", params.MaxIntervalMillis)
	logrus.Infof("%-34s%d", "Decimal precision:", params.Precision)
	logrus.Infof("%-34s%s", "Warning threshold:", describeRange(thresholds.Warning))
	logrus.Infof("%-34s%s", "Critical threshold:", describeRange(thresholds.Critical))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	durations, err := check.Measure(params.Host, socketType, params.Samples, timeout, params.MinIntervalMillis, params.MaxIntervalMillis, rng)
	if err != nil {
		return decision.UnknownError(err)
	}

	deltas, err := statistics.Deltas(durations)
	if err != nil {
		return decision.UnknownError(err)
	}

	jitter, err := statistics.Aggregate(method, deltas)
	if err != nil {
		return decision.UnknownError(err)
	}
	logrus.Debug("Aggregated jitter: ", jitter)

	return decision.Evaluate(method, statistics.Round(jitter, params.Precision), thresholds)
}

// exitWith writes the single report line to stdout and terminates with the
// matching severity code.
func exitWith(status decision.Status) {
	fmt.Println(status)
	os.Exit(status.ExitCode())
}

func setupLogger(verbosity int) {
	// stdout is reserved for the report line, all logging goes to stderr.
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	switch {
	case verbosity >= 3:
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetReportCaller(true)
	case verbosity == 2:
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func describeRange(r *decision.Range) string {
	if r == nil {
		return "none"
	}
	return r.String()
}

var hostLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// validHost accepts literal IPs and syntactically plausible hostnames. The
// check is purely lexical, no lookup happens here.
func validHost(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	s = strings.TrimSuffix(s, ".")
	for _, label := range strings.Split(s, ".") {
		if len(label) > 63 || !hostLabel.MatchString(label) {
			return false
		}
	}
	return true
}
