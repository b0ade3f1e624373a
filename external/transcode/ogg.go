package transcode

import "errors"

// oggOpusPackets walks the Ogg pages of a clip and reassembles the Opus
// packets from the lacing tables. Packets spanning pages are stitched back
// together; the OpusHead and OpusTags header packets are dropped.
func oggOpusPackets(data []byte) ([][]byte, error) {
	var (
		packets [][]byte
		pending []byte
	)
	offset := 0
	for offset < len(data) {
		if len(data)-offset < 27 {
			return nil, errors.New("truncated ogg page header")
		}
		if string(data[offset:offset+4]) != "OggS" {
			return nil, errors.New("missing ogg capture pattern")
		}
		segments := int(data[offset+26])
		headerEnd := offset + 27 + segments
		if len(data) < headerEnd {
			return nil, errors.New("truncated ogg lacing table")
		}
		lacing := data[offset+27 : headerEnd]
		body := headerEnd
		for _, l := range lacing {
			size := int(l)
			if len(data) < body+size {
				return nil, errors.New("truncated ogg page body")
			}
			pending = append(pending, data[body:body+size]...)
			body += size
			if size < 255 {
				packets = append(packets, pending)
				pending = nil
			}
		}
		offset = body
	}

	audio := packets[:0]
	for _, p := range packets {
		if len(p) >= 8 && (string(p[:8]) == "OpusHead" || string(p[:8]) == "OpusTags") {
			continue
		}
		audio = append(audio, p)
	}
	return audio, nil
}
