package clock

// Register addresses and bitfield positions for the SYSCON clock
// generation unit and the SPC power controller. The per-chip PAC/SVD
// definitions are an external collaborator per this HAL's scope (§1);
// these constants stand in for that boundary with the base addresses and
// field layout of the MCX-A clock generation unit as documented in the
// reference manual's "Clock Generation Unit" and "System Power Controller"
// chapters.
const (
	baseSYSCON = 0x4000_0000
	baseSPC    = 0x4009_4000

	// SPC voltage control
	regSPCActiveCfg  = baseSPC + 0x10
	regSPCLowPowerCfg = baseSPC + 0x14
	regSPCSC         = baseSPC + 0x00
	bitSPCBusy       = 8

	// SIRC (12 MHz FRO)
	regSIRCCSR    = baseSYSCON + 0x100
	bitSIRCEnable = 0
	bitSIRCClkRdy = 1
	regSIRCDIV    = baseSYSCON + 0x104 // fro_lf_div field at [3:0]

	// FIRC (180 MHz FRO)
	regFIRCCSR     = baseSYSCON + 0x110
	bitFIRCEnable  = 0
	bitFIRCClkRdy  = 1
	bitFIRCHFEnable = 4
	bitFIRC45MEnable = 5
	regFIRCSEL     = baseSYSCON + 0x114 // frequency select field at [1:0]
	regFIRCHFDIV   = baseSYSCON + 0x118 // fro_hf_div field at [3:0]

	// FRO16K
	regFRO16KCSR     = baseSYSCON + 0x120
	bitFRO16KEnable  = 0
	bitFRO16KVSysEn  = 1
	bitFRO16KCoreEn  = 2
	bitFRO16KLock    = 31

	// SOSC
	regSOSCCSR      = baseSYSCON + 0x130
	bitSOSCEnable   = 0
	bitSOSCValid    = 1
	bitSOSCError    = 2
	regSOSCRange    = baseSYSCON + 0x134 // frequency range select field at [2:0]

	// SPLL
	regSPLLCSR     = baseSYSCON + 0x140
	bitSPLLPowerDown = 0
	bitSPLLLock    = 1
	bitSPLLError   = 2
	regSPLLCTRL0   = baseSYSCON + 0x144 // source select field at [1:0]
	regSPLLNDIV    = baseSYSCON + 0x148
	regSPLLMDIV    = baseSYSCON + 0x14c
	regSPLLPDIV    = baseSYSCON + 0x150
	regSPLLSELI    = baseSYSCON + 0x154
	regSPLLSELP    = baseSYSCON + 0x158
	regPLL1ClkDiv  = baseSYSCON + 0x15c

	// Main clock mux / AHB divider
	regMainClkSel  = baseSYSCON + 0x008
	bitMainClkAck  = 7
	regAHBClkDiv   = baseSYSCON + 0x00c
	bitAHBStable   = 7

	// Flash wait-states
	regFMCCR       = baseSYSCON + 0x200
	maskFMCWaitStates = 0xf
)
