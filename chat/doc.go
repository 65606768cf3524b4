// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chat turns live-stream chat into poll votes.

A TwitchSource produces Messages; an Adapter filters them and forwards votes
to the poll engine:

	src := chat.NewTwitchSource(cfg.TwitchChannel, cfg.TwitchUsername, cfg.TwitchOAuthToken)
	go src.Run(ctx)
	go chat.NewAdapter(engine).Run(ctx, src.Messages())

A message counts as a vote when a poll is active, it was not sent by the
bot itself, it carries a stable viewer id, and its first character is 1 or
2. Everything else is dropped without a reply.
*/
package chat
