package scan

import "golang.org/x/net/bpf"

// replyFilter accepts unfragmented IPv4/UDP frames with source port 67,
// the classic "udp and src port 67" expression compiled by hand.
var replyFilter = []bpf.Instruction{
	bpf.LoadAbsolute{Off: 12, Size: 2},                                  // ethertype
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 0x0800, SkipTrue: 8},        // not IPv4
	bpf.LoadAbsolute{Off: 23, Size: 1},                                  // ip protocol
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 17, SkipTrue: 6},            // not UDP
	bpf.LoadAbsolute{Off: 20, Size: 2},                                  // flags + fragment offset
	bpf.JumpIf{Cond: bpf.JumpBitsSet, Val: 0x1fff, SkipTrue: 4},         // fragment
	bpf.LoadMemShift{Off: 14},                                           // x = ip header length
	bpf.LoadIndirect{Off: 14, Size: 2},                                  // udp source port
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 67, SkipTrue: 1},
	bpf.RetConstant{Val: 0xffff},
	bpf.RetConstant{Val: 0},
}

func assembleReplyFilter() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(replyFilter)
}
