// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered, later sources winning:

 1. a .env file in the working directory (optional)
 2. environment variables
 3. CLI flags

# Settings

	PORT                   -p                 default 3318
	DATABASE_TYPE          -t                 postgres, sqlite (default), redis, memory
	DATABASE_URL           -d                 required unless memory
	DASHBOARD_KEY          --dashboard-key    required
	TWITCH_CHANNEL         --channel          empty disables chat votes
	TWITCH_USERNAME        --twitch-user      empty joins anonymously
	TWITCH_OAUTH_TOKEN     --twitch-token     required with TWITCH_USERNAME
	DEFAULT_POLL_DURATION  --default-duration default 30 seconds
	SEED_FILE              --seed             JSON outcome graph
	COMMAND_RATE_LIMIT     --rate             default 5 per second per client

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
