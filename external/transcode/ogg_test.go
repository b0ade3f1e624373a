package transcode

import (
	"bytes"
	"testing"
)

func oggPage(lacing []byte, body []byte) []byte {
	page := make([]byte, 0, 27+len(lacing)+len(body))
	page = append(page, "OggS"...)
	page = append(page, make([]byte, 22)...)
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, body...)
	return page
}

func TestOggOpusPackets_DropsHeadersAndReassembles(t *testing.T) {
	head := append([]byte("OpusHead"), make([]byte, 11)...)
	tags := append([]byte("OpusTags"), make([]byte, 8)...)
	audio := bytes.Repeat([]byte{0xAB}, 300)

	var stream []byte
	stream = append(stream, oggPage([]byte{19}, head)...)
	stream = append(stream, oggPage([]byte{16, 255}, append(append([]byte{}, tags...), audio[:255]...))...)
	stream = append(stream, oggPage([]byte{45}, audio[255:])...)

	packets, err := oggOpusPackets(stream)
	if err != nil {
		t.Fatalf("parse ogg stream: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}
	if !bytes.Equal(packets[0], audio) {
		t.Fatalf("audio packet corrupted: got %d bytes, want %d", len(packets[0]), len(audio))
	}
}

func TestOggOpusPackets_SplitsPacketsByLacing(t *testing.T) {
	one := bytes.Repeat([]byte{1}, 10)
	two := bytes.Repeat([]byte{2}, 20)
	stream := oggPage([]byte{10, 20}, append(append([]byte{}, one...), two...))

	packets, err := oggOpusPackets(stream)
	if err != nil {
		t.Fatalf("parse ogg stream: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("got %d packets, want 2", len(packets))
	}
	if !bytes.Equal(packets[0], one) || !bytes.Equal(packets[1], two) {
		t.Fatal("packet boundaries do not follow the lacing table")
	}
}

func TestOggOpusPackets_RejectsGarbage(t *testing.T) {
	if _, err := oggOpusPackets([]byte("definitely not an ogg stream")); err == nil {
		t.Fatal("garbage input accepted")
	}
	if _, err := oggOpusPackets(oggPage([]byte{200}, []byte("short"))); err == nil {
		t.Fatal("truncated page body accepted")
	}
}
