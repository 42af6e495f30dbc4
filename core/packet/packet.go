package packet

// Packet carries one compressed bitstream chunk. An empty packet is the
// decoder's flush signal.
type Packet struct {
	Data []byte
	Pts  uint64
}

func (p *Packet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}
