// Package spu implements the guest's 24-voice ADPCM sample processor: per-voice
// pitch/ADSR/Gaussian-interpolated sample generation, the 24-voice mixer, the
// comb/all-pass reverb unit, and the sound RAM / register MMIO surface.
//
// Grounded on original_source/src/cpu/bus/spu.rs, spu/voice.rs and
// spu/reverb.rs.
package spu

// gaussianTable is the 512-entry Gaussian interpolation coefficient table
// used to filter adjacent ADPCM samples. Values are Q0.15 fixed point,
// extracted verbatim from the reference implementation's lookup table.
var gaussianTable = [0x200]int32{
		-0x1, -0x1, -0x1, -0x1, -0x1, -0x1, -0x1, -0x1,
		-0x1, -0x1, -0x1, -0x1, -0x1, -0x1, -0x1, -0x1,
		0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x1,
		0x1, 0x1, 0x1, 0x2, 0x2, 0x2, 0x3, 0x3,
		0x3, 0x4, 0x4, 0x5, 0x5, 0x6, 0x7, 0x7,
		0x8, 0x9, 0x9, 0xa, 0xb, 0xc, 0xd, 0xe,
		0xf, 0x10, 0x11, 0x12, 0x13, 0x15, 0x16, 0x18,
		0x19, 0x1b, 0x1c, 0x1e, 0x20, 0x21, 0x23, 0x25,
		0x27, 0x29, 0x2c, 0x2e, 0x30, 0x33, 0x35, 0x38,
		0x3a, 0x3d, 0x40, 0x43, 0x46, 0x49, 0x4d, 0x50,
		0x54, 0x57, 0x5b, 0x5f, 0x63, 0x67, 0x6b, 0x6f,
		0x74, 0x78, 0x7d, 0x82, 0x87, 0x8c, 0x91, 0x96,
		0x9c, 0xa1, 0xa7, 0xad, 0xb3, 0xba, 0xc0, 0xc7,
		0xcd, 0xd4, 0xdb, 0xe3, 0xea, 0xf2, 0xfa, 0x101,
		0x10a, 0x112, 0x11b, 0x123, 0x12c, 0x135, 0x13f, 0x148,
		0x152, 0x15c, 0x166, 0x171, 0x17b, 0x186, 0x191, 0x19c,
		0x1a8, 0x1b4, 0x1c0, 0x1cc, 0x1d9, 0x1e5, 0x1f2, 0x200,
		0x20d, 0x21b, 0x229, 0x237, 0x246, 0x255, 0x264, 0x273,
		0x283, 0x293, 0x2a3, 0x2b4, 0x2c4, 0x2d6, 0x2e7, 0x2f9,
		0x30b, 0x31d, 0x330, 0x343, 0x356, 0x36a, 0x37e, 0x392,
		0x3a7, 0x3bc, 0x3d1, 0x3e7, 0x3fc, 0x413, 0x42a, 0x441,
		0x458, 0x470, 0x488, 0x4a0, 0x4b9, 0x4d2, 0x4ec, 0x506,
		0x520, 0x53b, 0x556, 0x572, 0x58e, 0x5aa, 0x5c7, 0x5e4,
		0x601, 0x61f, 0x63e, 0x65c, 0x67c, 0x69b, 0x6bb, 0x6dc,
		0x6fd, 0x71e, 0x740, 0x762, 0x784, 0x7a7, 0x7cb, 0x7ef,
		0x813, 0x838, 0x85d, 0x883, 0x8a9, 0x8d0, 0x8f7, 0x91e,
		0x946, 0x96f, 0x998, 0x9c1, 0x9eb, 0xa16, 0xa40, 0xa6c,
		0xa98, 0xac4, 0xaf1, 0xb1e, 0xb4c, 0xb7a, 0xba9, 0xbd8,
		0xc07, 0xc38, 0xc68, 0xc99, 0xccb, 0xcfd, 0xd30, 0xd63,
		0xd97, 0xdcb, 0xe00, 0xe35, 0xe6b, 0xea1, 0xed7, 0xf0f,
		0xf46, 0xf7f, 0xfb7, 0xff1, 0x102a, 0x1065, 0x109f, 0x10db,
		0x1116, 0x1153, 0x118f, 0x11cd, 0x120b, 0x1249, 0x1288, 0x12c7,
		0x1307, 0x1347, 0x1388, 0x13c9, 0x140b, 0x144d, 0x1490, 0x14d4,
		0x1517, 0x155c, 0x15a0, 0x15e6, 0x162c, 0x1672, 0x16b9, 0x1700,
		0x1747, 0x1790, 0x17d8, 0x1821, 0x186b, 0x18b5, 0x1900, 0x194b,
		0x1996, 0x19e2, 0x1a2e, 0x1a7b, 0x1ac8, 0x1b16, 0x1b64, 0x1bb3,
		0x1c02, 0x1c51, 0x1ca1, 0x1cf1, 0x1d42, 0x1d93, 0x1de5, 0x1e37,
		0x1e89, 0x1edc, 0x1f2f, 0x1f82, 0x1fd6, 0x202a, 0x207f, 0x20d4,
		0x2129, 0x217f, 0x21d5, 0x222c, 0x2282, 0x22da, 0x2331, 0x2389,
		0x23e1, 0x2439, 0x2492, 0x24eb, 0x2545, 0x259e, 0x25f8, 0x2653,
		0x26ad, 0x2708, 0x2763, 0x27be, 0x281a, 0x2876, 0x28d2, 0x292e,
		0x298b, 0x29e7, 0x2a44, 0x2aa1, 0x2aff, 0x2b5c, 0x2bba, 0x2c18,
		0x2c76, 0x2cd4, 0x2d33, 0x2d91, 0x2df0, 0x2e4f, 0x2eae, 0x2f0d,
		0x2f6c, 0x2fcc, 0x302b, 0x308b, 0x30ea, 0x314a, 0x31aa, 0x3209,
		0x3269, 0x32c9, 0x3329, 0x3389, 0x33e9, 0x3449, 0x34a9, 0x3509,
		0x3569, 0x35c9, 0x3629, 0x3689, 0x36e8, 0x3748, 0x37a8, 0x3807,
		0x3867, 0x38c6, 0x3926, 0x3985, 0x39e4, 0x3a43, 0x3aa2, 0x3b00,
		0x3b5f, 0x3bbd, 0x3c1b, 0x3c79, 0x3cd7, 0x3d35, 0x3d92, 0x3def,
		0x3e4c, 0x3ea9, 0x3f05, 0x3f62, 0x3fbd, 0x4019, 0x4074, 0x40d0,
		0x412a, 0x4185, 0x41df, 0x4239, 0x4292, 0x42eb, 0x4344, 0x439c,
		0x43f4, 0x444c, 0x44a3, 0x44fa, 0x4550, 0x45a6, 0x45fc, 0x4651,
		0x46a6, 0x46fa, 0x474e, 0x47a1, 0x47f4, 0x4846, 0x4898, 0x48e9,
		0x493a, 0x498a, 0x49d9, 0x4a29, 0x4a77, 0x4ac5, 0x4b13, 0x4b5f,
		0x4bac, 0x4bf7, 0x4c42, 0x4c8d, 0x4cd7, 0x4d20, 0x4d68, 0x4db0,
		0x4df7, 0x4e3e, 0x4e84, 0x4ec9, 0x4f0e, 0x4f52, 0x4f95, 0x4fd7,
		0x5019, 0x505a, 0x509a, 0x50da, 0x5118, 0x5156, 0x5194, 0x51d0,
		0x520c, 0x5247, 0x5281, 0x52ba, 0x52f3, 0x532a, 0x5361, 0x5397,
		0x53cc, 0x5401, 0x5434, 0x5467, 0x5499, 0x54ca, 0x54fa, 0x5529,
		0x5558, 0x5585, 0x55b2, 0x55de, 0x5609, 0x5632, 0x565b, 0x5684,
		0x56ab, 0x56d1, 0x56f6, 0x571b, 0x573e, 0x5761, 0x5782, 0x57a3,
		0x57c3, 0x57e2, 0x57ff, 0x581c, 0x5838, 0x5853, 0x586d, 0x5886,
		0x589e, 0x58b5, 0x58cb, 0x58e0, 0x58f4, 0x5907, 0x5919, 0x592a,
		0x593a, 0x5949, 0x5958, 0x5965, 0x5971, 0x597c, 0x5986, 0x598f,
		0x5997, 0x599e, 0x59a4, 0x59a9, 0x59ad, 0x59b0, 0x59b2, 0x59b3,}

// posADPCMFilter and negADPCMFilter are the ADPCM prediction filter
// coefficients (K1 and K2, respectively) for the 5 defined filter modes;
// the remaining entries are reserved and always zero.
var posADPCMFilter = [16]int32{0, 60, 115, 98, 122, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
var negADPCMFilter = [16]int32{0, 0, -52, -55, -60, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
