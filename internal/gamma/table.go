package gamma

// s6e63m0 drive voltages in µV per brightness index, for the red, green
// and blue channels.
var atlasTable = Table{
	{0x00000000, [3]uint32{4200000, 4200000, 4200000}},
	{0x00000001, [3]uint32{3994200, 4107600, 3910200}},
	{0x00000400, [3]uint32{3669486, 3738030, 3655093}},
	{0x000004C2, [3]uint32{3664456, 3732059, 3649872}},
	{0x000005A8, [3]uint32{3659356, 3726019, 3644574}},
	{0x000006BA, [3]uint32{3654160, 3719879, 3639171}},
	{0x00000800, [3]uint32{3648872, 3713646, 3633668}},
	{0x00000983, [3]uint32{3643502, 3707331, 3628075}},
	{0x00000B50, [3]uint32{3638029, 3700909, 3622368}},
	{0x00000D74, [3]uint32{3632461, 3694392, 3616558}},
	{0x00001000, [3]uint32{3626792, 3687772, 3610636}},
	{0x00001307, [3]uint32{3621022, 3681052, 3604605}},
	{0x000016A1, [3]uint32{3615146, 3674224, 3598455}},
	{0x00001AE9, [3]uint32{3609163, 3667289, 3592189}},
	{0x00002000, [3]uint32{3603070, 3660245, 3585801}},
	{0x0000260E, [3]uint32{3596860, 3653083, 3579284}},
	{0x00002D41, [3]uint32{3590532, 3645805, 3572637}},
	{0x000035D1, [3]uint32{3584081, 3638403, 3565854}},
	{0x00004000, [3]uint32{3577504, 3630876, 3558930}},
	{0x00004C1C, [3]uint32{3570797, 3623221, 3551863}},
	{0x00005A82, [3]uint32{3563956, 3615434, 3544649}},
	{0x00006BA2, [3]uint32{3556976, 3607510, 3537279}},
	{0x00008000, [3]uint32{3549853, 3599444, 3529750}},
	{0x00009838, [3]uint32{3542582, 3591234, 3522056}},
	{0x0000B505, [3]uint32{3535159, 3582874, 3514193}},
	{0x0000D745, [3]uint32{3527577, 3574360, 3506153}},
	{0x00010000, [3]uint32{3519832, 3565687, 3497931}},
	{0x00013070, [3]uint32{3511918, 3556849, 3489519}},
	{0x00016A0A, [3]uint32{3503829, 3547842, 3480912}},
	{0x0001AE8A, [3]uint32{3495559, 3538659, 3472102}},
	{0x00020000, [3]uint32{3487101, 3529295, 3463080}},
	{0x000260E0, [3]uint32{3478447, 3519742, 3453839}},
	{0x0002D414, [3]uint32{3469592, 3509996, 3444372}},
	{0x00035D14, [3]uint32{3460527, 3500049, 3434667}},
	{0x00040000, [3]uint32{3451244, 3489893, 3424717}},
	{0x0004C1C0, [3]uint32{3441734, 3479522, 3414512}},
	{0x0005A828, [3]uint32{3431990, 3468927, 3404040}},
	{0x0006BA28, [3]uint32{3422000, 3458099, 3393292}},
	{0x00080000, [3]uint32{3411756, 3447030, 3382254}},
	{0x0009837F, [3]uint32{3401247, 3435711, 3370915}},
	{0x000B504F, [3]uint32{3390462, 3424131, 3359262}},
	{0x000D7450, [3]uint32{3379388, 3412280, 3347281}},
	{0x00100000, [3]uint32{3368014, 3400147, 3334957}},
	{0x001306FE, [3]uint32{3356325, 3387721, 3322274}},
	{0x0016A09E, [3]uint32{3344309, 3374988, 3309216}},
	{0x001AE8A0, [3]uint32{3331950, 3361936, 3295765}},
	{0x00200000, [3]uint32{3319231, 3348550, 3281902}},
	{0x00260DFC, [3]uint32{3306137, 3334817, 3267607}},
	{0x002D413D, [3]uint32{3292649, 3320719, 3252859}},
	{0x0035D13F, [3]uint32{3278748, 3306240, 3237634}},
	{0x00400000, [3]uint32{3264413, 3291361, 3221908}},
	{0x004C1BF8, [3]uint32{3249622, 3276065, 3205654}},
	{0x005A827A, [3]uint32{3234351, 3260329, 3188845}},
	{0x006BA27E, [3]uint32{3218576, 3244131, 3171449}},
	{0x00800000, [3]uint32{3202268, 3227448, 3153434}},
	{0x009837F0, [3]uint32{3185399, 3210255, 3134765}},
	{0x00B504F3, [3]uint32{3167936, 3192523, 3115404}},
	{0x00D744FD, [3]uint32{3149847, 3174223, 3095308}},
	{0x01000000, [3]uint32{3131093, 3155322, 3074435}},
	{0x01306FE1, [3]uint32{3111635, 3135786, 3052735}},
	{0x016A09E6, [3]uint32{3091431, 3115578, 3030156}},
	{0x01AE89FA, [3]uint32{3070432, 3094655, 3006641}},
	{0x02000000, [3]uint32{3048587, 3072974, 2982127}},
	{0x0260DFC1, [3]uint32{3025842, 3050485, 2956547}},
	{0x02D413CD, [3]uint32{3002134, 3027135, 2929824}},
	{0x035D13F3, [3]uint32{2977397, 3002865, 2901879}},
	{0x04000000, [3]uint32{2951558, 2977611, 2872620}},
	{0x04C1BF83, [3]uint32{2924535, 2951302, 2841948}},
	{0x05A8279A, [3]uint32{2896240, 2923858, 2809753}},
	{0x06BA27E6, [3]uint32{2866574, 2895192, 2775914}},
	{0x08000000, [3]uint32{2835426, 2865207, 2740295}},
	{0x09837F05, [3]uint32{2802676, 2833793, 2702744}},
	{0x0B504F33, [3]uint32{2768187, 2800829, 2663094}},
	{0x0D744FCD, [3]uint32{2731806, 2766175, 2621155}},
	{0x10000000, [3]uint32{2693361, 2729675, 2576712}},
	{0x1306FE0A, [3]uint32{2652659, 2691153, 2529527}},
	{0x16A09E66, [3]uint32{2609480, 2650402, 2479324}},
	{0x1AE89F99, [3]uint32{2563575, 2607191, 2425793}},
	{0x20000000, [3]uint32{2514655, 2561246, 2368579}},
	{0x260DFC14, [3]uint32{2462394, 2512251, 2307272}},
	{0x2D413CCD, [3]uint32{2406412, 2459834, 2241403}},
	{0x35D13F32, [3]uint32{2346266, 2403554, 2170425}},
	{0x40000000, [3]uint32{2281441, 2342883, 2093706}},
	{0x4C1BF828, [3]uint32{2211332, 2277183, 2010504}},
	{0x5A82799A, [3]uint32{2135220, 2205675, 1919951}},
	{0x6BA27E65, [3]uint32{2052250, 2127391, 1821028}},
	{0x80000000, [3]uint32{1961395, 2041114, 1712536}},
	{0x9837F051, [3]uint32{1861415, 1945288, 1593066}},
	{0xB504F333, [3]uint32{1750800, 1837874, 1460986}},
	{0xD744FCCA, [3]uint32{1627706, 1716150, 1314437}},
	{0xFFFFFFFF, [3]uint32{1489879, 1576363, 1151415}},
}
