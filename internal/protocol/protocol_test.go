package protocol

import "testing"

func TestParseFrameHeaderComplete(t *testing.T) {
	n, headerLen, ok, err := ParseFrameHeader([]byte("11\r\nSET a hello"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok || n != 11 || headerLen != 4 {
		t.Fatalf("ParseFrameHeader() = %d,%d,%v want 11,4,true", n, headerLen, ok)
	}
}

func TestParseFrameHeaderIncomplete(t *testing.T) {
	_, _, ok, err := ParseFrameHeader([]byte("1"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for a header with no CRLF yet")
	}
}

func TestParseFrameHeaderMalformedLength(t *testing.T) {
	_, _, _, err := ParseFrameHeader([]byte("abc\r\nrest"))
	if err == nil {
		t.Fatal("expected an error for a non-decimal length")
	}
}

func TestParseCommandSetNoTTL(t *testing.T) {
	cmd, err := ParseCommand([]byte("SET a hello"))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != CmdSet || cmd.Key != "a" || string(cmd.Value) != "hello" || cmd.TTLMs != 0 {
		t.Fatalf("ParseCommand() = %+v", cmd)
	}
}

func TestParseCommandSetWithTTL(t *testing.T) {
	cmd, err := ParseCommand([]byte("SET k v PX 200"))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != CmdSet || cmd.Key != "k" || string(cmd.Value) != "v" || cmd.TTLMs != 200 {
		t.Fatalf("ParseCommand() = %+v", cmd)
	}
}

func TestParseCommandSetRejectsZeroTTL(t *testing.T) {
	if _, err := ParseCommand([]byte("SET k v PX 0")); err == nil {
		t.Fatal("expected an error for PX 0")
	}
}

func TestParseCommandCaseInsensitiveCommandToken(t *testing.T) {
	cmd, err := ParseCommand([]byte("get a"))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != CmdGet || cmd.Key != "a" {
		t.Fatalf("ParseCommand() = %+v", cmd)
	}
}

func TestParseCommandGetWrongArity(t *testing.T) {
	if _, err := ParseCommand([]byte("GET")); err == nil {
		t.Fatal("expected an error for GET with no key")
	}
	if _, err := ParseCommand([]byte("GET a b")); err == nil {
		t.Fatal("expected an error for GET with extra arguments")
	}
}

func TestParseCommandDel(t *testing.T) {
	cmd, err := ParseCommand([]byte("DEL a"))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != CmdDel || cmd.Key != "a" {
		t.Fatalf("ParseCommand() = %+v", cmd)
	}
}

func TestParseCommandUnknown(t *testing.T) {
	if _, err := ParseCommand([]byte("FOO a")); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestEncodeReplies(t *testing.T) {
	if got := string(EncodeOK()); got != "+OK" {
		t.Fatalf("EncodeOK() = %q", got)
	}
	if got := string(EncodeNil()); got != "$-1" {
		t.Fatalf("EncodeNil() = %q", got)
	}
	if got := string(EncodeBulk([]byte("hello"))); got != "$5\r\nhello" {
		t.Fatalf("EncodeBulk() = %q", got)
	}
	if got := string(EncodeError("boom")); got != "-ERR boom" {
		t.Fatalf("EncodeError() = %q", got)
	}
}
