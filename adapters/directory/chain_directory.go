package directory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"github.com/layer-3/whisperbox/core"
)

// Chain is a read-only directory backed by the on-chain profile registry,
// queried over Solana JSON-RPC. Profile accounts are derived from
// ["profile", handle] seeds and hold the Anchor-serialized registry entry.
type Chain struct {
	rpcURL    string
	programID [32]byte
	client    *http.Client
}

// NewChain creates a directory for the registry program at programID
// (base58), served by the RPC node at rpcURL.
func NewChain(rpcURL, programID string) (*Chain, error) {
	raw, err := base58.Decode(programID)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("invalid program id %q", programID)
	}
	c := &Chain{
		rpcURL: rpcURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	copy(c.programID[:], raw)
	return c, nil
}

// Lookup derives the handle's profile account address and fetches it.
func (c *Chain) Lookup(ctx context.Context, handle string) (*core.Profile, error) {
	if err := core.ValidateHandle(handle); err != nil {
		return nil, err
	}

	addr, err := c.profileAddress(handle)
	if err != nil {
		return nil, err
	}

	var result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	params := []any{base58.Encode(addr[:]), map[string]any{"encoding": "base64"}}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil || len(result.Value.Data) == 0 {
		return nil, core.ErrUnknownHandle
	}

	raw, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("malformed account data: %w", err)
	}
	return parseProfileAccount(raw)
}

// ListByOwner scans the program's accounts filtered on the owner field,
// which sits right after the 8-byte account discriminator.
func (c *Chain) ListByOwner(ctx context.Context, owner string) ([]*core.Profile, error) {
	var result []struct {
		Account struct {
			Data []string `json:"data"`
		} `json:"account"`
	}
	params := []any{
		base58.Encode(c.programID[:]),
		map[string]any{
			"encoding": "base64",
			"filters": []any{
				map[string]any{"memcmp": map[string]any{"offset": 8, "bytes": owner}},
			},
		},
	}
	if err := c.call(ctx, "getProgramAccounts", params, &result); err != nil {
		return nil, err
	}

	profiles := make([]*core.Profile, 0, len(result))
	for _, item := range result {
		if len(item.Account.Data) == 0 {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(item.Account.Data[0])
		if err != nil {
			continue
		}
		profile, err := parseProfileAccount(raw)
		if err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Chain) call(ctx context.Context, method string, params []any, result any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: rpc status %d", core.ErrDirectoryUnavailable, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: rpc error %d: %s", core.ErrDirectoryUnavailable, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return json.Unmarshal(rpcResp.Result, result)
}

// profileAddress derives the program address for ["profile", handle],
// walking the bump seed down from 255 until the hash falls off the curve.
func (c *Chain) profileAddress(handle string) ([32]byte, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		h.Write([]byte("profile"))
		h.Write([]byte(handle))
		h.Write([]byte{byte(bump)})
		h.Write(c.programID[:])
		h.Write([]byte("ProgramDerivedAddress"))
		var addr [32]byte
		copy(addr[:], h.Sum(nil))

		// Program addresses must not be valid curve points.
		if _, err := new(edwards25519.Point).SetBytes(addr[:]); err != nil {
			return addr, nil
		}
	}
	return [32]byte{}, errors.New("no valid program address for handle")
}

// parseProfileAccount decodes the Anchor (borsh) profile layout:
// 8-byte discriminator, owner, length-prefixed handle, encryption key,
// length-prefixed allowlist, bump.
func parseProfileAccount(data []byte) (*core.Profile, error) {
	const discriminator = 8
	idx := discriminator
	if len(data) < idx+32+4 {
		return nil, errors.New("profile account too short")
	}

	owner := base58.Encode(data[idx : idx+32])
	idx += 32

	handleLen := int(binary.LittleEndian.Uint32(data[idx : idx+4]))
	idx += 4
	if handleLen > core.MaxHandleLen || len(data) < idx+handleLen+32+4 {
		return nil, errors.New("malformed profile account")
	}
	handle := string(data[idx : idx+handleLen])
	idx += handleLen

	profile := &core.Profile{Handle: handle, Owner: owner}
	copy(profile.EncPublicKey[:], data[idx:idx+32])
	idx += 32

	allowLen := int(binary.LittleEndian.Uint32(data[idx : idx+4]))
	idx += 4
	if len(data) < idx+allowLen*32 {
		return nil, errors.New("malformed profile allowlist")
	}
	for i := 0; i < allowLen; i++ {
		profile.Allowlist.Add(base58.Encode(data[idx : idx+32]))
		idx += 32
	}
	return profile, nil
}
