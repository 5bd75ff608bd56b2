// Package protocol implements the length-prefixed text wire codec
// (spec section 6): request framing, SET/GET/DEL command parsing, and
// reply encoding. It replaces the teacher's binary opcode framing
// (internal/adapter/tcp/protocol.go, MagicByte/HeaderSize/opcodes)
// entirely — KVMemo's wire contract is a plain text protocol specified
// bit-exact by the spec, not a format carried over from the teacher.
package protocol

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/kvmemo/kvmemo/internal/errs"
)

// CommandKind identifies a parsed request.
type CommandKind int

const (
	CmdSet CommandKind = iota
	CmdGet
	CmdDel
)

// Command is a fully parsed request frame.
type Command struct {
	Kind  CommandKind
	Key   string
	Value []byte
	TTLMs int64 // 0 means no TTL; only meaningful for CmdSet
}

// ParseFrameHeader parses the decimal length prefix of a frame
// (`<len>\r\n`) from buf, returning the declared payload length and the
// number of bytes the header itself occupied. ok is false when buf
// does not yet contain a full header — callers should wait for more
// bytes, not treat that as an error.
func ParseFrameHeader(buf []byte) (length int, headerLen int, ok bool, err error) {
	idx := indexCRLF(buf)
	if idx < 0 {
		if len(buf) > 32 {
			return 0, 0, false, errs.Protocol("frame header exceeds maximum length without CRLF")
		}
		return 0, 0, false, nil
	}
	digits := string(buf[:idx])
	n, parseErr := strconv.Atoi(digits)
	if parseErr != nil || n < 0 {
		return 0, 0, false, errs.Protocol("malformed frame length %q", digits)
	}
	return n, idx + 2, true, nil
}

func indexCRLF(buf []byte) int {
	return bytes.Index(buf, []byte("\r\n"))
}

// ParseCommand parses a fully-received payload (the bytes after the
// frame header, of exactly the declared length) into a Command.
// Commands are ASCII, case-insensitive on the command token,
// space-separated. The value in SET is the single field after the key,
// optionally followed by " PX <ttl_ms>"; it cannot contain whitespace.
func ParseCommand(payload []byte) (Command, error) {
	s := string(payload)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Command{}, errs.Protocol("empty command")
	}
	switch strings.ToUpper(fields[0]) {
	case "SET":
		return parseSet(s, fields)
	case "GET":
		if len(fields) != 2 {
			return Command{}, errs.Protocol("GET requires exactly one argument, got %d", len(fields)-1)
		}
		return Command{Kind: CmdGet, Key: fields[1]}, nil
	case "DEL":
		if len(fields) != 2 {
			return Command{}, errs.Protocol("DEL requires exactly one argument, got %d", len(fields)-1)
		}
		return Command{Kind: CmdDel, Key: fields[1]}, nil
	default:
		return Command{}, errs.Protocol("unknown command %q", fields[0])
	}
}

// parseSet handles both "SET key value" and "SET key value PX ttl_ms".
// Arguments are strictly space-separated (spec section 6); a value
// itself cannot contain whitespace under this wire protocol.
func parseSet(_ string, fields []string) (Command, error) {
	switch len(fields) {
	case 3:
		return Command{Kind: CmdSet, Key: fields[1], Value: []byte(fields[2])}, nil
	case 5:
		if !strings.EqualFold(fields[3], "PX") {
			return Command{}, errs.Protocol("expected PX, got %q", fields[3])
		}
		ttl, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil || ttl <= 0 {
			return Command{}, errs.InvalidArgument("PX ttl_ms must be a positive integer, got %q", fields[4])
		}
		return Command{Kind: CmdSet, Key: fields[1], Value: []byte(fields[2]), TTLMs: ttl}, nil
	default:
		return Command{}, errs.Protocol("SET takes 2 or 4 arguments, got %d", len(fields)-1)
	}
}

// EncodeOK encodes the +OK reply. There is no trailing CRLF — the
// CRLF in the wire contract only ever separates a frame's decimal
// length from its payload, never terminates a reply.
func EncodeOK() []byte {
	return []byte("+OK")
}

// EncodeBulk encodes a GET hit: $<len>\r\n<value>.
func EncodeBulk(value []byte) []byte {
	out := make([]byte, 0, len(value)+8)
	out = append(out, '$')
	out = append(out, []byte(strconv.Itoa(len(value)))...)
	out = append(out, '\r', '\n')
	out = append(out, value...)
	return out
}

// EncodeNil encodes a GET miss: $-1.
func EncodeNil() []byte {
	return []byte("$-1")
}

// EncodeError encodes an error reply: -ERR <cause>.
func EncodeError(cause string) []byte {
	return []byte("-ERR " + cause)
}
