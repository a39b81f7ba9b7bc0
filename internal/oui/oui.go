// Package oui maps MAC address prefixes to hardware vendors.
package oui

import "strings"

// Unknown is returned for prefixes missing from the table.
const Unknown = "未知廠商"

// keyed by the first three octets, upper-case hex without separators
var vendors = map[string]string{
	"000C29": "VMware",
	"005056": "VMware",
	"000569": "VMware",
	"080027": "VirtualBox",
	"001C42": "Parallels",
	"00155D": "Microsoft Hyper-V",
	"525400": "QEMU/KVM",
	"00163E": "Xen",
	"B827EB": "Raspberry Pi",
	"DCA632": "Raspberry Pi",
	"E45F01": "Raspberry Pi",
	"3C22FB": "Apple",
	"843A4B": "Apple",
	"000C42": "MikroTik",
	"4C5E0C": "MikroTik",
	"E48D8C": "MikroTik",
	"001B21": "Intel",
	"00E04C": "Realtek",
	"001018": "Broadcom",
	"C4AD34": "MikroTik",
	"F09FC2": "Ubiquiti",
	"24A43C": "Ubiquiti",
	"788A20": "Ubiquiti",
	"50C7BF": "TP-Link",
	"14CC20": "TP-Link",
	"A42BB0": "TP-Link",
	"00146C": "Netgear",
	"A040A0": "Netgear",
	"001E58": "D-Link",
	"1CBDB9": "D-Link",
	"00000C": "Cisco",
	"00248C": "ASUSTek",
	"2C56DC": "ASUSTek",
	"001132": "Synology",
	"00089B": "QNAP",
	"245EBE": "QNAP",
}

// Lookup returns the vendor registered for mac's first three octets, or Unknown.
// Octets may be separated by ':' or '-' and use either case.
func Lookup(mac string) string {
	prefix, ok := prefixOf(mac)
	if !ok {
		return Unknown
	}
	if v, ok := vendors[prefix]; ok {
		return v
	}
	return Unknown
}

func prefixOf(mac string) (string, bool) {
	parts := strings.FieldsFunc(mac, func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) < 3 {
		return "", false
	}

	var b strings.Builder
	for _, p := range parts[:3] {
		switch len(p) {
		case 1:
			// "arp -an" on BSD prints single-digit octets
			b.WriteByte('0')
		case 2:
		default:
			return "", false
		}
		b.WriteString(p)
	}
	return strings.ToUpper(b.String()), true
}
