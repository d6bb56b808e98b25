package address

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// Litecoin and Dogecoin share Bitcoin's address encodings with their own
// version bytes, so they are expressed as additional chaincfg networks.
var (
	litecoinMainNetParams = altParams(chaincfg.MainNetParams, "litecoin", 0xdbb6c0fb,
		0x30, 0x32, "ltc", [4]byte{0x01, 0x9d, 0x9c, 0xfe}, [4]byte{0x01, 0x9d, 0xa4, 0x62})
	litecoinTestNetParams = altParams(chaincfg.TestNet3Params, "litecoin-testnet", 0xf1c8d2fd,
		0x6f, 0x3a, "tltc", [4]byte{0x04, 0x36, 0xef, 0x7d}, [4]byte{0x04, 0x36, 0xf6, 0xe1})
	dogecoinMainNetParams = altParams(chaincfg.MainNetParams, "dogecoin", 0xc0c0c0c0,
		0x1e, 0x16, "", [4]byte{0x02, 0xfa, 0xc3, 0x98}, [4]byte{0x02, 0xfa, 0xca, 0xfd})
	dogecoinTestNetParams = altParams(chaincfg.TestNet3Params, "dogecoin-testnet", 0xdcb7c1fc,
		0x71, 0xc4, "", [4]byte{0x04, 0x32, 0xa2, 0x43}, [4]byte{0x04, 0x32, 0xa9, 0xa8})
)

func altParams(base chaincfg.Params, name string, magic uint32, pkh, sh byte, hrp string, hdPriv, hdPub [4]byte) chaincfg.Params {
	p := base
	p.Name = name
	p.Net = wire.BitcoinNet(magic)
	p.PubKeyHashAddrID = pkh
	p.ScriptHashAddrID = sh
	p.Bech32HRPSegwit = hrp
	p.HDPrivateKeyID = hdPriv
	p.HDPublicKeyID = hdPub
	return p
}

func init() {
	for _, p := range []*chaincfg.Params{
		&litecoinMainNetParams, &litecoinTestNetParams,
		&dogecoinMainNetParams, &dogecoinTestNetParams,
	} {
		if err := chaincfg.Register(p); err != nil && !errors.Is(err, chaincfg.ErrDuplicateNet) {
			panic(err)
		}
	}
}
