// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers the embedded defaults, a YAML file, a dotenv file
// and environment variables through Viper. LoggerFactory builds the zap logger,
// optionally teeing into a rotating log file. Clock abstracts the wall clock so
// generation timestamps can be fixed in tests.
package utils
