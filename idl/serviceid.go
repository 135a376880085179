package idl

// FNV-1a parameters for 32-bit hashes.
const (
	fnvOffsetBasis uint32 = 0x811c9dc5
	fnvPrime       uint32 = 0x01000193
)

// ServiceID derives the 32-bit service identifier from a service name using
// FNV-1a over the name's UTF-8 bytes. The hash is stable across runs and
// platforms, so services never need a central identifier registry: the same
// name always addresses the same service.
func ServiceID(name string) uint32 {
	h := fnvOffsetBasis
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= fnvPrime
	}
	return h
}
