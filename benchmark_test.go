package winproc

import (
	"testing"
	"time"
)

// BenchmarkStateRecordDecode measures the performance of decoding state
// file records
func BenchmarkStateRecordDecode(b *testing.B) {
	rec := StateRecord{
		Since:    time.Now(),
		PID:      1234,
		TID:      5678,
		ExitCode: 0,
		HasExit:  false,
		State:    StateRunning,
	}
	data := encodeStateRecord(rec)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := decodeStateRecord(data[:])
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkStateRecordDecodeParallel measures parallel decode performance
func BenchmarkStateRecordDecodeParallel(b *testing.B) {
	rec := StateRecord{
		Since: time.Now(),
		PID:   1234,
		TID:   5678,
		State: StateRunning,
	}
	data := encodeStateRecord(rec)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, err := decodeStateRecord(data[:])
			if err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkStaffRecordEncode measures fixed-size record encoding
func BenchmarkStaffRecordEncode(b *testing.B) {
	rec := NewStaffRecord(42, "J. Smith", 37.5)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = rec.Encode()
	}
}

// BenchmarkStaffRecordDecode measures fixed-size record decoding
func BenchmarkStaffRecordDecode(b *testing.B) {
	rec := NewStaffRecord(42, "J. Smith", 37.5)
	data := rec.Encode()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := DecodeStaffRecord(data[:])
		if err != nil {
			b.Fatal(err)
		}
	}
}
