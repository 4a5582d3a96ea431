package solchain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	bchain "github.com/nftbridge/relayer/pkg/chain"
)

// RunListener subscribes, at finalized commitment, to the logs of
// transactions that mention the bridge program and
// dispatches decoded NewRequestEvent/TokenMintedEvent entries to handler,
// mirroring sol_events.rs's subscribe_event. Unlike the origin
// implementation, which matches events by checking whether a log line
// contains a truncated base64 substring of the discriminator, this
// decodes each "Program data: " line fully and compares the exact 8-byte
// discriminator prefix, avoiding both false positives from substring
// collisions and false negatives from the truncation.
func (a *Adapter) RunListener(ctx context.Context, handler bchain.EventHandler) error {
	client, err := ws.Connect(ctx, a.wsURL)
	if err != nil {
		return fmt.Errorf("dial solana ws: %w", err)
	}
	defer client.Close()

	sub, err := client.LogsSubscribeMentions(a.bridgeProgram, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("subscribe solana logs: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("solana log subscription: %w", err)
		}
		if got == nil || got.Value.Err != nil {
			continue
		}

		for _, line := range got.Value.Logs {
			if err := a.dispatchLogLine(ctx, line, handler); err != nil {
				a.logger.Printf("dispatch solana log: %v", err)
			}
		}
	}
}

const programDataPrefix = "Program data: "

// dispatchLogLine decodes a single program log line, if it carries
// "Program data: " payload matching one of our two event discriminators,
// and dispatches it to handler.
func (a *Adapter) dispatchLogLine(ctx context.Context, line string, handler bchain.EventHandler) error {
	if !strings.HasPrefix(line, programDataPrefix) {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programDataPrefix))
	if err != nil {
		return nil // malformed program data, ignore
	}
	if len(raw) < 8 {
		return nil
	}

	var discriminator [8]byte
	copy(discriminator[:], raw[:8])

	switch discriminator {
	case eventNewRequestDiscriminator:
		_, _, requestID, err := decodeBridgeEvent(raw)
		if err != nil {
			return nil
		}
		return handler.OnNewRequest(ctx, requestID)

	case eventTokenMintedDiscriminator:
		mint, tokenAccount, requestID, err := decodeBridgeEvent(raw)
		if err != nil {
			return nil
		}
		return handler.OnTokenMinted(ctx, requestID, mint.String(), tokenAccount.String())
	}
	return nil
}

// decodeBridgeEvent parses the shared payload shape both bridge events
// use: an 8-byte discriminator, two pubkeys (mint, token account), then a
// borsh string holding the request id. The origin implementation's Rust
// decoder drops the request id string's first byte before trimming nulls,
// an artifact of how it splits the borsh length prefix from the payload;
// this reproduces that so ids line up byte-for-byte with what the EVM
// side and request intake generate.
func decodeBridgeEvent(raw []byte) (mint, tokenAccount solana.PublicKey, requestID string, err error) {
	body := raw[8:]
	const pubkeySize = 32
	if len(body) < 2*pubkeySize+1 {
		return solana.PublicKey{}, solana.PublicKey{}, "", fmt.Errorf("event payload too short")
	}

	copy(mint[:], body[0:pubkeySize])
	copy(tokenAccount[:], body[pubkeySize:2*pubkeySize])

	rest := string(body[2*pubkeySize:])
	if len(rest) > 0 {
		rest = rest[1:]
	}
	requestID = strings.Trim(rest, "\x00")
	return mint, tokenAccount, requestID, nil
}
