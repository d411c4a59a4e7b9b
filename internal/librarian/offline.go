package librarian

var firstPage = []Book{
	{
		Title:    "Panduan SLiMS untuk Pemula",
		Author:   "Tim Komunitas SLiMS",
		Year:     "2024",
		Summary:  "Buku panduan lengkap instalasi dan konfigurasi SLiMS untuk pustakawan sekolah.",
		Category: "Teknologi",
	},
	{
		Title:    "Manajemen Perpustakaan Digital",
		Author:   "Dr. Pustaka",
		Year:     "2023",
		Summary:  "Strategi mengelola aset digital di era modern menggunakan teknologi cloud.",
		Category: "Manajemen",
	},
	{
		Title:    "Literasi Informasi Abad 21",
		Author:   "Ahmad Literat",
		Year:     "2025",
		Summary:  "Membangun budaya baca siswa dengan bantuan kecerdasan buatan.",
		Category: "Pendidikan",
	},
}

var nextPage = []Book{
	{
		Title:    "Psikologi Pemustaka",
		Author:   "Prof. Baca",
		Year:     "2022",
		Summary:  "Memahami perilaku pengunjung perpustakaan di era digital.",
		Category: "Psikologi",
	},
	{
		Title:    "Desain Interior Perpustakaan",
		Author:   "Arsitek Pustaka",
		Year:     "2024",
		Summary:  "Menciptakan ruang baca yang nyaman dan estetik.",
		Category: "Arsitektur",
	},
	{
		Title:    "Preservasi Bahan Pustaka",
		Author:   "Ratna Wilis",
		Year:     "2023",
		Summary:  "Teknik merawat buku fisik agar tahan lama.",
		Category: "Konservasi",
	},
}

// offlineBooks — заготовленные ответы без модели. Второй набор отдаётся при "показать ещё".
func offlineBooks(exclude []string) []Book {
	src := firstPage
	if len(exclude) > 0 {
		src = nextPage
	}
	out := make([]Book, len(src))
	copy(out, src)
	return out
}
