package ds3231

// EncodeBCD converts v to packed BCD. Only 0-99 produce valid BCD; larger
// values are not rejected and yield a tens nibble above 9 (or wrap).
func EncodeBCD(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

// DecodeBCD converts packed BCD to binary. Nibbles above 9 are not
// rejected: 0x6A decodes to 6*10+10 = 70.
func DecodeBCD(b uint8) uint8 {
	return (b>>4)*10 + b&0x0F
}

// DecodeTemperature converts the two temperature registers to degrees
// Celsius. hi is a two's-complement integer, the top two bits of lo are
// quarter degrees.
func DecodeTemperature(hi, lo uint8) float32 {
	return float32(int8(hi)) + float32((lo>>6)&0x03)*0.25
}
